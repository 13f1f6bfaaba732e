// internal/app/features/payment/routes.go
package payment

import (
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/authz"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the payment endpoints. While the adapter is disabled the
// endpoints answer 503 to everyone, signed in or not.
func Routes(h *Handler, v *auth.Verifier, roles authz.RoleFetcher) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/webhook", h.HandleWebhook)

		if !h.Adapter.Enabled() {
			r.Post("/capturePayment", h.HandleCapture)
			r.Post("/verifyPayment", h.HandleVerify)
			r.Post("/sendPaymentSuccessEmail", h.HandleSendReceipt)
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(v.RequireSignedIn(h.Log))
			pr.Use(authz.RequireRole(roles, h.Log, models.RoleStudent))
			pr.Post("/capturePayment", h.HandleCapture)
			pr.Post("/verifyPayment", h.HandleVerify)
			pr.Post("/sendPaymentSuccessEmail", h.HandleSendReceipt)
		})
	}
}
