// internal/domain/models/section.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Section is an ordered chapter of a Course. It owns its SubSections.
type Section struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	CourseID      primitive.ObjectID   `bson:"course_id" json:"courseId"`
	Name          string               `bson:"name" json:"sectionName"`
	SubSectionIDs []primitive.ObjectID `bson:"subsections" json:"subSection"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
}

// SubSection is a single lecture inside a Section.
//
// Duration is stored as the string the upload flow reported, normally a
// number of seconds with an optional fractional part ("125.4").
type SubSection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SectionID   primitive.ObjectID `bson:"section_id" json:"sectionId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    string             `bson:"duration" json:"timeDuration"`
	VideoURL    string             `bson:"video_url" json:"videoUrl,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
