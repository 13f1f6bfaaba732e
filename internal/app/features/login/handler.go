// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/ratelimit"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users   *userstore.Store
	Issuer  *auth.Issuer
	Cookies *auth.CookieCodec // nil disables the cookie; the token is still returned
	Limiter *ratelimit.LoginLimiter
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	Audit   *auditlog.Logger // optional
}

func NewHandler(
	db *mongo.Database,
	issuer *auth.Issuer,
	cookies *auth.CookieCodec,
	limiter *ratelimit.LoginLimiter,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Issuer:  issuer,
		Cookies: cookies,
		Limiter: limiter,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the token at the top level of data so scripts can
// log in without cookies.
type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req)
		return req, err
	}
	req.Email = r.FormValue("email")
	req.Password = r.FormValue("password")
	return req, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login", err, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Please Fill up All the Required Fields")
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, req.Email); !ok {
			h.Log.Warn("login rate limited", zap.String("email", req.Email), zap.String("ip", ratelimit.ClientIP(r)))
			h.Audit.LoginFailedRateLimit(r.Context(), r, req.Email)
			uierrors.Fail(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Log.Info("login failed: unknown email", zap.String("email", req.Email))
		h.Audit.LoginFailedUserNotFound(ctx, r, req.Email)
		uierrors.Fail(w, http.StatusUnauthorized, "User is not Registered with Us Please SignUp to Continue")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "login user lookup", err, "Login Failure Please Try Again")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		h.Log.Info("login failed: bad password", zap.String("user_id", u.ID.Hex()))
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		uierrors.Fail(w, http.StatusUnauthorized, "Password is incorrect")
		return
	}

	token, exp, err := h.Issuer.Issue(auth.Identity{ID: u.ID, Role: u.Role, Email: u.Email})
	if err != nil {
		status, msg := auth.FailureResponse(err)
		if errors.Is(err, auth.ErrServerMisconfigured) {
			h.Log.Error("login: token signing not configured")
			uierrors.Fail(w, status, msg)
			return
		}
		h.ErrLog.LogServerError(w, r, "issue token", err, "Login Failure Please Try Again")
		return
	}

	if h.Cookies != nil {
		if err := h.Cookies.Set(w, token, exp); err != nil {
			h.ErrLog.LogServerError(w, r, "set token cookie", err, "Login Failure Please Try Again")
			return
		}
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	h.Audit.LoginSuccess(r.Context(), r, u.ID, u.Email)
	uierrors.OK(w, http.StatusOK, "User Login Success", loginResponse{
		Token:     token,
		ExpiresAt: exp.Unix(),
		User:      u,
	})
}
