// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles. Stored exactly as written.
const (
	RoleStudent    = "Student"
	RoleInstructor = "Instructor"
	RoleAdmin      = "Admin"
)

// IsValidRole reports whether r is a known account role.
func IsValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is any account: students, instructors and admins.
//
// Courses holds back-references to courses the user teaches (instructors)
// or is enrolled in (students). It does not own them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName    string             `bson:"first_name" json:"firstName"`
	LastName     string             `bson:"last_name" json:"lastName"`
	Email        string             `bson:"email" json:"email"` // normalized lowercase
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"accountType"`
	Approved     bool               `bson:"approved" json:"approved"`
	Active       bool               `bson:"active" json:"active"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`

	ProfileID *primitive.ObjectID  `bson:"profile_id,omitempty" json:"additionalDetails,omitempty"`
	CourseIDs []primitive.ObjectID `bson:"courses" json:"courses"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
