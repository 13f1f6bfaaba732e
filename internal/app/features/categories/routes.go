// internal/app/features/categories/routes.go
package categories

import (
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/authz"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the category endpoints alongside the course routes.
func Routes(h *Handler, v *auth.Verifier, roles authz.RoleFetcher) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/showAllCategories", h.HandleList)

		r.Group(func(pr chi.Router) {
			pr.Use(v.RequireSignedIn(h.Log))
			pr.Use(authz.RequireRole(roles, h.Log, models.RoleAdmin))
			pr.Post("/createCategory", h.HandleCreate)
		})
	}
}
