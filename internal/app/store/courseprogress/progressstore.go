package progressstore

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
	return &Store{c: db.Collection("course_progress")}
}

// Get returns the progress record for (courseID, userID), or
// mongo.ErrNoDocuments when the user has none.
func (s *Store) Get(ctx context.Context, courseID, userID primitive.ObjectID) (*models.CourseProgress, error) {
	var p models.CourseProgress
	err := s.c.FindOne(ctx, bson.M{"course_id": courseID, "user_id": userID}).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure creates an empty progress record for (courseID, userID) unless one
// already exists.
func (s *Store) Ensure(ctx context.Context, courseID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"course_id": courseID, "user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"_id":              primitive.NewObjectID(),
			"completed_videos": []primitive.ObjectID{},
			"created_at":       time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteByCourse removes every progress record for courseID.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
