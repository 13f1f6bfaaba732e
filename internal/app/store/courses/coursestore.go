package coursestore

import (
	"context"
	"time"

	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// Create inserts c with a fresh ID and timestamps. Slice fields are stored
// as empty arrays rather than null.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = &now
	if c.SectionIDs == nil {
		c.SectionIDs = []primitive.ObjectID{}
	}
	if c.RatingIDs == nil {
		c.RatingIDs = []primitive.ObjectID{}
	}
	if c.StudentsEnrolled == nil {
		c.StudentsEnrolled = []primitive.ObjectID{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Instructions == nil {
		c.Instructions = []string{}
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// GetByID returns mongo.ErrNoDocuments when the course does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs returns the courses in ids, in no particular order.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Update lists the fields an owner may change. Nil fields are left alone;
// anything not named here (instructor, sections, enrollment) is immutable
// through Update.
type Update struct {
	Name              *string
	Description       *string
	WhatYouWillLearn  *string
	Price             *float64
	CategoryID        *primitive.ObjectID
	Status            *string
	Tags              *[]string
	Instructions      *[]string
	Thumbnail         *string
	ThumbnailPublicID *string
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.WhatYouWillLearn == nil &&
		u.Price == nil && u.CategoryID == nil && u.Status == nil && u.Tags == nil &&
		u.Instructions == nil && u.Thumbnail == nil && u.ThumbnailPublicID == nil
}

func (u Update) set() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.WhatYouWillLearn != nil {
		set["what_you_will_learn"] = *u.WhatYouWillLearn
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.CategoryID != nil {
		set["category_id"] = *u.CategoryID
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Tags != nil {
		set["tags"] = *u.Tags
	}
	if u.Instructions != nil {
		set["instructions"] = *u.Instructions
	}
	if u.Thumbnail != nil {
		set["thumbnail"] = *u.Thumbnail
	}
	if u.ThumbnailPublicID != nil {
		set["thumbnail_public_id"] = *u.ThumbnailPublicID
	}
	return set
}

// Update applies upd and refreshes updated_at. Returns mongo.ErrNoDocuments
// when the course does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := upd.set()
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListPublished returns the public catalog: published courses with only the
// fields a listing card needs.
func (s *Store) ListPublished(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().
		SetProjection(bson.M{
			"name":              1,
			"price":             1,
			"thumbnail":         1,
			"instructor_id":     1,
			"ratings":           1,
			"students_enrolled": 1,
			"status":            1,
			"created_at":        1,
		}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"status": models.CourseStatusPublished}, opts)
}

// ListByInstructor returns every course owned by instructorID, newest first.
func (s *Store) ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"instructor_id": instructorID}, opts)
}

// AddStudent records an enrollment. Adding twice is a no-op.
func (s *Store) AddStudent(ctx context.Context, courseID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, courseID, bson.M{"$addToSet": bson.M{"students_enrolled": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a course by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
