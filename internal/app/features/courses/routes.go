// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/authz"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the course endpoints on the /course router.
func Routes(h *Handler, v *auth.Verifier, roles authz.RoleFetcher) func(chi.Router) {
	return func(r chi.Router) {
		// Public catalog
		r.Get("/getAllCourses", h.HandleListPublished)
		r.Post("/getCourseDetails", h.HandleGetDetails)

		r.Group(func(pr chi.Router) {
			pr.Use(v.RequireSignedIn(h.Log))

			pr.Post("/getFullCourseDetails", h.HandleGetFullDetails)

			// Instructor authoring. Ownership is checked per course.
			pr.Group(func(ir chi.Router) {
				ir.Use(authz.RequireRole(roles, h.Log, models.RoleInstructor))

				ir.Post("/createCourse", h.HandleCreateCourse)
				ir.Post("/editCourse", h.HandleEditCourse)
				ir.Get("/getInstructorCourses", h.HandleListInstructorCourses)
				ir.Delete("/deleteCourse", h.HandleDeleteCourse)
				ir.Post("/deleteCourse", h.HandleDeleteCourse)
			})
		})
	}
}
