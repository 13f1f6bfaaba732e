// internal/app/features/errors/errorlog.go
package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and writes the matching JSON envelope.
// In dev mode internal errors carry a stack trace in the "error" field;
// in prod they never carry more than a generic message.
type ErrorLogger struct {
	log *zap.Logger
	dev bool
}

// NewErrorLogger constructs an ErrorLogger. dev controls stack exposure.
func NewErrorLogger(logger *zap.Logger, dev bool) *ErrorLogger {
	return &ErrorLogger{log: logger, dev: dev}
}

func (el *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if id, ok := auth.CurrentIdentity(r); ok {
		fs = append(fs, zap.String("user_id", id.ID.Hex()))
	}
	return fs
}

// LogServerError logs at error level and writes a 500 with userMsg.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	el.log.Error(msg, el.fields(r, err)...)
	env := Envelope{Message: userMsg}
	if el.dev {
		env.Error = err.Error() + "\n" + string(debug.Stack())
	}
	WriteJSON(w, http.StatusInternalServerError, env)
}

// LogBadRequest logs at info level and writes a 400 with userMsg.
func (el *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	el.log.Info(msg, el.fields(r, err)...)
	env := Envelope{Message: userMsg}
	if err != nil {
		env.Error = err.Error()
	}
	WriteJSON(w, http.StatusBadRequest, env)
}

// Respond classifies err and writes the envelope for its kind. Client errors
// keep their message; internal errors are logged and replaced with a generic
// message.
func (el *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ae, ok := apperr.As(err)
	if !ok || ae.Kind == apperr.Internal {
		el.LogServerError(w, r, msg, err, "Something went wrong. Please try again.")
		return
	}

	switch ae.Kind {
	case apperr.ServiceNotConfigured, apperr.UpstreamFailure:
		el.log.Error(msg, el.fields(r, err)...)
	case apperr.Forbidden, apperr.Unauthorized:
		el.log.Warn(msg, el.fields(r, err)...)
	default:
		el.log.Debug(msg, el.fields(r, err)...)
	}

	env := Envelope{Message: ae.Message}
	if ae.Kind == apperr.Validation && ae.Err != nil {
		env.Error = ae.Err.Error()
	}
	WriteJSON(w, ae.Kind.Status(), env)
}

// Recoverer turns panics in downstream handlers into a logged 500.
func (el *ErrorLogger) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				el.log.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				env := Envelope{Message: "Something went wrong. Please try again."}
				if el.dev {
					env.Error = string(debug.Stack())
				}
				WriteJSON(w, http.StatusInternalServerError, env)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
