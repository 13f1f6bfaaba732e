package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "Passw0rd!"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a user whose password is DefaultPassword.
func (f *Fixtures) CreateUser(ctx context.Context, first, last, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Approved:     true,
		Active:       true,
		CourseIDs:    []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    &now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateStudent creates a test student.
func (f *Fixtures) CreateStudent(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Student", email, models.RoleStudent)
}

// CreateInstructor creates a test instructor.
func (f *Fixtures) CreateInstructor(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Instructor", email, models.RoleInstructor)
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test", "Admin", email, models.RoleAdmin)
}

// CreateCategory creates a category with no courses.
func (f *Fixtures) CreateCategory(ctx context.Context, name string) models.Category {
	f.t.Helper()

	cat := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: name + " courses",
		CourseIDs:   []primitive.ObjectID{},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("categories").InsertOne(ctx, cat); err != nil {
		f.t.Fatalf("failed to create test category: %v", err)
	}
	return cat
}

// CreateCourse creates a course owned by instructorID and links it from the
// instructor and the category the way course creation does.
func (f *Fixtures) CreateCourse(ctx context.Context, name string, instructorID, categoryID primitive.ObjectID, status string) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Course{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Description:      "About " + name,
		WhatYouWillLearn: "Everything about " + name,
		InstructorID:     instructorID,
		CategoryID:       categoryID,
		SectionIDs:       []primitive.ObjectID{},
		RatingIDs:        []primitive.ObjectID{},
		StudentsEnrolled: []primitive.ObjectID{},
		Price:            499,
		Thumbnail:        "https://cdn.example.com/" + name + ".png",
		Tags:             []string{"go"},
		Instructions:     []string{"bring a laptop"},
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        &now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	f.push(ctx, "users", instructorID, "courses", c.ID)
	f.push(ctx, "categories", categoryID, "courses", c.ID)
	return c
}

// AddSection appends a section to courseID with one subsection per entry in
// durations. Each subsection gets a video URL.
func (f *Fixtures) AddSection(ctx context.Context, courseID primitive.ObjectID, name string, durations ...string) (models.Section, []models.SubSection) {
	f.t.Helper()

	now := time.Now().UTC()
	sec := models.Section{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		Name:      name,
		CreatedAt: now,
	}
	subs := make([]models.SubSection, 0, len(durations))
	for i, d := range durations {
		ss := models.SubSection{
			ID:          primitive.NewObjectID(),
			SectionID:   sec.ID,
			Title:       name + " lecture",
			Description: "lecture " + string(rune('A'+i)),
			Duration:    d,
			VideoURL:    "https://cdn.example.com/video/" + primitive.NewObjectID().Hex() + ".mp4",
			CreatedAt:   now,
		}
		if _, err := f.db.Collection("subsections").InsertOne(ctx, ss); err != nil {
			f.t.Fatalf("failed to create test subsection: %v", err)
		}
		subs = append(subs, ss)
		sec.SubSectionIDs = append(sec.SubSectionIDs, ss.ID)
	}
	if sec.SubSectionIDs == nil {
		sec.SubSectionIDs = []primitive.ObjectID{}
	}

	if _, err := f.db.Collection("sections").InsertOne(ctx, sec); err != nil {
		f.t.Fatalf("failed to create test section: %v", err)
	}
	f.push(ctx, "courses", courseID, "sections", sec.ID)
	return sec, subs
}

// Enroll links studentID and courseID in both directions.
func (f *Fixtures) Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) {
	f.t.Helper()
	f.push(ctx, "courses", courseID, "students_enrolled", studentID)
	f.push(ctx, "users", studentID, "courses", courseID)
}

// CreateProgress records completed subsections for (courseID, userID).
func (f *Fixtures) CreateProgress(ctx context.Context, courseID, userID primitive.ObjectID, completed ...primitive.ObjectID) models.CourseProgress {
	f.t.Helper()

	if completed == nil {
		completed = []primitive.ObjectID{}
	}
	p := models.CourseProgress{
		ID:              primitive.NewObjectID(),
		CourseID:        courseID,
		UserID:          userID,
		CompletedVideos: completed,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := f.db.Collection("course_progress").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test progress: %v", err)
	}
	return p
}

func (f *Fixtures) push(ctx context.Context, coll string, id primitive.ObjectID, field string, value primitive.ObjectID) {
	f.t.Helper()
	_, err := f.db.Collection(coll).UpdateByID(ctx, id, bson.M{"$push": bson.M{field: value}})
	if err != nil {
		f.t.Fatalf("failed to update %s.%s: %v", coll, field, err)
	}
}
