// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course statuses. A course moves between them only when its owner edits it.
const (
	CourseStatusDraft     = "Draft"
	CourseStatusPublished = "Published"
)

// IsValidCourseStatus reports whether s is one of the two known course statuses.
func IsValidCourseStatus(s string) bool {
	return s == CourseStatusDraft || s == CourseStatusPublished
}

// Course is the aggregate root for catalog content. It owns its Sections
// (and transitively their SubSections); the instructor's and category's
// course lists are non-owning back-references.
//
// JSON names follow the shape the web client already consumes.
type Course struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"courseName"`
	Description      string             `bson:"description" json:"courseDescription"`
	WhatYouWillLearn string             `bson:"what_you_will_learn" json:"whatYouWillLearn"`

	InstructorID primitive.ObjectID `bson:"instructor_id" json:"instructor"`
	CategoryID   primitive.ObjectID `bson:"category_id" json:"category"`

	// Ordered list of owned sections.
	SectionIDs []primitive.ObjectID `bson:"sections" json:"courseContent"`

	RatingIDs        []primitive.ObjectID `bson:"ratings" json:"ratingAndReviews"`
	StudentsEnrolled []primitive.ObjectID `bson:"students_enrolled" json:"studentsEnrolled"`

	Price             float64  `bson:"price" json:"price"`
	Thumbnail         string   `bson:"thumbnail" json:"thumbnail"`
	ThumbnailPublicID string   `bson:"thumbnail_public_id,omitempty" json:"-"`
	Tags              []string `bson:"tags" json:"tag"`
	Instructions      []string `bson:"instructions" json:"instructions"`
	Status            string   `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// IsOwnedBy reports whether userID is the course's instructor.
func (c *Course) IsOwnedBy(userID primitive.ObjectID) bool {
	return c.InstructorID == userID
}
