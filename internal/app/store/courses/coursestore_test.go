package coursestore_test

import (
	"errors"
	"testing"
	"time"

	coursestore "github.com/dalemusser/studyplanet/internal/app/store/courses"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Course{
		Name:         "Go Basics",
		InstructorID: primitive.NewObjectID(),
		CategoryID:   primitive.NewObjectID(),
		Price:        0,
		Status:       models.CourseStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.SectionIDs == nil || got.StudentsEnrolled == nil || got.Tags == nil {
		t.Error("expected slice fields stored as empty arrays")
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	c := fx.CreateCourse(ctx, "Original", inst.ID, cat.ID, models.CourseStatusDraft)

	name := "Renamed"
	price := 0.0
	status := models.CourseStatusPublished
	tags := []string{"a", "b"}
	if err := store.Update(ctx, c.ID, coursestore.Update{Name: &name, Price: &price, Status: &status, Tags: &tags}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.GetByID(ctx, c.ID)
	if got.Name != name || got.Price != 0 || got.Status != status || len(got.Tags) != 2 {
		t.Errorf("after update: %+v", got)
	}
	if got.Description != c.Description {
		t.Error("untouched fields must keep their values")
	}
	if got.InstructorID != inst.ID {
		t.Error("instructor must not change")
	}

	err := store.Update(ctx, primitive.NewObjectID(), coursestore.Update{Name: &name})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("update of missing course err = %v, want mongo.ErrNoDocuments", err)
	}
}

func TestUpdate_IsEmpty(t *testing.T) {
	if !(coursestore.Update{}).IsEmpty() {
		t.Error("zero Update should be empty")
	}
	s := "x"
	if (coursestore.Update{Thumbnail: &s}).IsEmpty() {
		t.Error("Update with a field should not be empty")
	}
}

func TestStore_ListPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	fx.CreateCourse(ctx, "Draft One", inst.ID, cat.ID, models.CourseStatusDraft)
	pub := fx.CreateCourse(ctx, "Published One", inst.ID, cat.ID, models.CourseStatusPublished)

	got, err := store.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != pub.ID {
		t.Fatalf("ListPublished = %+v, want only %s", got, pub.ID.Hex())
	}
	if got[0].Description != "" {
		t.Error("listing projection should not include description")
	}
	if got[0].Thumbnail == "" || got[0].InstructorID != inst.ID {
		t.Error("listing projection should include thumbnail and instructor")
	}
}

func TestStore_ListByInstructor_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	other := fx.CreateInstructor(ctx, "other@example.com")
	cat := fx.CreateCategory(ctx, "Web")

	first := fx.CreateCourse(ctx, "First", inst.ID, cat.ID, models.CourseStatusDraft)
	time.Sleep(5 * time.Millisecond)
	second := fx.CreateCourse(ctx, "Second", inst.ID, cat.ID, models.CourseStatusPublished)
	fx.CreateCourse(ctx, "Not Mine", other.ID, cat.ID, models.CourseStatusPublished)

	got, err := store.ListByInstructor(ctx, inst.ID)
	if err != nil {
		t.Fatalf("ListByInstructor failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d courses, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Error("expected newest course first")
	}

	none, err := store.ListByInstructor(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ListByInstructor failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v", none)
	}
}

func TestStore_AddStudentAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	c := fx.CreateCourse(ctx, "Course", inst.ID, cat.ID, models.CourseStatusPublished)
	student := primitive.NewObjectID()

	if err := store.AddStudent(ctx, c.ID, student); err != nil {
		t.Fatalf("AddStudent failed: %v", err)
	}
	if err := store.AddStudent(ctx, c.ID, student); err != nil {
		t.Fatalf("AddStudent (again) failed: %v", err)
	}
	got, _ := store.GetByID(ctx, c.ID)
	if len(got.StudentsEnrolled) != 1 {
		t.Errorf("students_enrolled has %d entries, want 1", len(got.StudentsEnrolled))
	}

	n, err := store.Delete(ctx, c.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, c.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete err = %v", err)
	}
}
