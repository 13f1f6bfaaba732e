// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log     *zap.Logger
	Cookies *auth.CookieCodec

	// Verifier and Audit are optional. When both are set the logout is
	// recorded against the caller's identity, if the request carries one.
	Verifier *auth.Verifier
	Audit    *auditlog.Logger
}

func NewHandler(cookies *auth.CookieCodec, logger *zap.Logger) *Handler {
	return &Handler{
		Log:     logger,
		Cookies: cookies,
	}
}

// HandleLogout handles POST /auth/logout. Tokens are stateless, so logging
// out only expires the cookie; a bearer token stays valid until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var userID *primitive.ObjectID
	if h.Verifier != nil && h.Audit != nil {
		if id, err := h.Verifier.Authenticate(r); err == nil {
			userID = &id.ID
		}
	}
	if h.Cookies != nil {
		h.Cookies.Clear(w)
	}
	h.Log.Debug("logout", zap.String("ip", r.RemoteAddr))
	h.Audit.Logout(r.Context(), r, userID)
	uierrors.OK(w, http.StatusOK, "Logged out successfully", nil)
}
