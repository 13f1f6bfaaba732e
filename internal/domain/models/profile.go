// internal/domain/models/profile.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Profile carries optional personal details for a User.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Gender        string             `bson:"gender,omitempty" json:"gender"`
	DateOfBirth   string             `bson:"date_of_birth,omitempty" json:"dateOfBirth"`
	About         string             `bson:"about,omitempty" json:"about"`
	ContactNumber string             `bson:"contact_number,omitempty" json:"contactNumber"`
}
