// internal/app/system/auth/middleware.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxBodyPeek bounds how much of a JSON body is read to look for a token.
const maxBodyPeek = 1 << 20

// multipartMemory matches the limit the course handlers parse with.
const multipartMemory = 32 << 20

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the verified caller, if any.
func CurrentIdentity(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// WithTestIdentity injects id into r. Tests use it to bypass token checks.
func WithTestIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), id))
}

// TokenFromRequest finds the raw token. Sources are consulted in order:
// the token cookie, a "token" body field, then an Authorization: Bearer
// header, which overrides the other two when present.
func (v *Verifier) TokenFromRequest(r *http.Request) string {
	var token string
	if v.cookies != nil {
		token = v.cookies.Read(r)
	}
	if token == "" {
		token = bodyToken(r)
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return token
}

// Authenticate extracts and verifies the request's token.
func (v *Verifier) Authenticate(r *http.Request) (*Identity, error) {
	token := v.TokenFromRequest(r)
	if token == "" {
		return nil, ErrTokenMissing
	}
	return v.Verify(token)
}

// RequireSignedIn rejects requests without a valid token and otherwise
// attaches the Identity to the request context.
func (v *Verifier) RequireSignedIn(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Authenticate(r)
			if err != nil {
				status, msg := FailureResponse(err)
				if errors.Is(err, ErrServerMisconfigured) {
					log.Error("token verification not configured", zap.String("path", r.URL.Path))
				} else {
					log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				}
				writeFailure(w, status, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// FailureResponse maps a verification error to its HTTP status and the
// message shown to the caller.
func FailureResponse(err error) (int, string) {
	switch {
	case errors.Is(err, ErrServerMisconfigured):
		return http.StatusInternalServerError, "internal error"
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "unauthenticated, please reauthenticate"
	}
	return http.StatusUnauthorized, "unauthenticated"
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{false, msg})
}

// bodyToken looks for a "token" field without consuming the body for
// downstream handlers.
func bodyToken(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(b), r.Body), r.Body}
		if err != nil {
			return ""
		}
		var body struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(b, &body) != nil {
			return ""
		}
		return body.Token
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return ""
		}
		return r.FormValue("token")
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		return r.PostFormValue("token")
	}
	return ""
}
