// internal/app/policy/coursepolicy/coursepolicy.go
package coursepolicy

import (
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsOwner reports whether userID is the course's instructor. This is an
// exact id comparison; being an Instructor does not grant access to another
// instructor's course.
func IsOwner(c *models.Course, userID primitive.ObjectID) bool {
	return c != nil && !userID.IsZero() && c.IsOwnedBy(userID)
}

// RequireOwner returns a Forbidden error naming action ("edit", "delete")
// when userID does not own c.
func RequireOwner(c *models.Course, userID primitive.ObjectID, action string) error {
	if IsOwner(c, userID) {
		return nil
	}
	return apperr.Denied("You are not authorized to " + action + " this course. Only the course instructor can " + action + " it.")
}

// IsEnrolled reports whether userID appears in the course's enrollment list.
func IsEnrolled(c *models.Course, userID primitive.ObjectID) bool {
	if c == nil {
		return false
	}
	for _, id := range c.StudentsEnrolled {
		if id == userID {
			return true
		}
	}
	return false
}
