// internal/domain/models/category.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups courses in the catalog. CourseIDs is a non-owning
// back-reference list maintained when courses are created or deleted.
type Category struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"` // folded, unique
	Description string               `bson:"description" json:"description"`
	CourseIDs   []primitive.ObjectID `bson:"courses" json:"courses"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
}
