// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes registers the login endpoint under /auth.
func Routes(h *Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
	}
}
