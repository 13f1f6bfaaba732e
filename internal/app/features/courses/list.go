// internal/app/features/courses/list.go
package courses

import (
	"context"
	"fmt"

	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseSummary is a catalog card.
type CourseSummary struct {
	ID               primitive.ObjectID   `json:"_id"`
	Name             string               `json:"courseName"`
	Price            float64              `json:"price"`
	Thumbnail        string               `json:"thumbnail"`
	Instructor       *models.User         `json:"instructor"`
	RatingIDs        []primitive.ObjectID `json:"ratingAndReviews"`
	StudentsEnrolled []primitive.ObjectID `json:"studentsEnrolled"`
}

// ListPublished returns the public catalog with instructors populated.
func (m *Manager) ListPublished(ctx context.Context) ([]CourseSummary, error) {
	cs, err := m.courses.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(cs))
	seen := make(map[primitive.ObjectID]bool, len(cs))
	for _, c := range cs {
		if !seen[c.InstructorID] {
			seen[c.InstructorID] = true
			ids = append(ids, c.InstructorID)
		}
	}
	users, err := m.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]CourseSummary, 0, len(cs))
	for _, c := range cs {
		out = append(out, CourseSummary{
			ID:               c.ID,
			Name:             c.Name,
			Price:            c.Price,
			Thumbnail:        c.Thumbnail,
			Instructor:       byID[c.InstructorID],
			RatingIDs:        nonNil(c.RatingIDs),
			StudentsEnrolled: nonNil(c.StudentsEnrolled),
		})
	}
	return out, nil
}

// ListByInstructor returns the caller's own courses, newest first.
func (m *Manager) ListByInstructor(ctx context.Context, callerID primitive.ObjectID) ([]models.Course, error) {
	cs, err := m.courses.ListByInstructor(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return cs, nil
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
