package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/indexes"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FirstName:    "  Ada ",
		LastName:     "Lovelace",
		Email:        " Ada@Example.COM ",
		PasswordHash: "hash",
		Role:         "instructor",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized", created.Email)
	}
	if created.FirstName != "Ada" {
		t.Errorf("FirstName = %q, want trimmed", created.FirstName)
	}
	if created.Role != models.RoleInstructor {
		t.Errorf("Role = %q, want %q", created.Role, models.RoleInstructor)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt == nil {
		t.Error("expected timestamps to be set")
	}
	if created.CourseIDs == nil {
		t.Error("expected empty, non-nil course list")
	}

	got, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_Create_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		user models.User
	}{
		{"unknown role", models.User{Email: "x@example.com", Role: "superuser"}},
		{"missing email", models.User{Email: "  ", Role: models.RoleStudent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.user); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	u := models.User{Email: "dup@example.com", Role: models.RoleStudent}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	u.Email = "DUP@example.com"
	if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("second Create err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("err = %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_CourseBackReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := fx.CreateStudent(ctx, "s1@example.com")
	s2 := fx.CreateStudent(ctx, "s2@example.com")
	courseID := primitive.NewObjectID()

	for _, id := range []primitive.ObjectID{s1.ID, s2.ID, s1.ID} {
		if err := store.AddCourse(ctx, id, courseID); err != nil {
			t.Fatalf("AddCourse failed: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, s1.ID)
	if len(got.CourseIDs) != 1 {
		t.Errorf("AddCourse twice stored %d entries, want 1", len(got.CourseIDs))
	}

	n, err := store.PullCourseFromMany(ctx, []primitive.ObjectID{s1.ID, s2.ID}, courseID)
	if err != nil {
		t.Fatalf("PullCourseFromMany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("modified %d users, want 2", n)
	}

	if err := store.AddCourse(ctx, primitive.NewObjectID(), courseID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("AddCourse on missing user err = %v, want mongo.ErrNoDocuments", err)
	}
}

func TestFetcher_FetchRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	f := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "teach@example.com")
	role, err := f.FetchRole(ctx, inst.ID)
	if err != nil {
		t.Fatalf("FetchRole failed: %v", err)
	}
	if role != models.RoleInstructor {
		t.Errorf("role = %q, want %q", role, models.RoleInstructor)
	}

	if _, err := f.FetchRole(ctx, primitive.NewObjectID()); err == nil {
		t.Error("expected error for unknown user")
	}
}
