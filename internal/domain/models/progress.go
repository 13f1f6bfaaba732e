// internal/domain/models/progress.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseProgress tracks which subsections a student has completed in a course.
// There is at most one per (course, user).
type CourseProgress struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	CourseID        primitive.ObjectID   `bson:"course_id" json:"courseID"`
	UserID          primitive.ObjectID   `bson:"user_id" json:"userId"`
	CompletedVideos []primitive.ObjectID `bson:"completed_videos" json:"completedVideos"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
}

// RatingReview is a student's rating of a course.
type RatingReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course"`
	Rating    float64            `bson:"rating" json:"rating"`
	Review    string             `bson:"review" json:"review"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
