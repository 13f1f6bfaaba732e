package sectionstore

import (
	"context"

	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sections")}
}

// GetOrdered returns the sections named by ids in the order of ids.
// Ids with no matching document are skipped.
func (s *Store) GetOrdered(ctx context.Context, ids []primitive.ObjectID) ([]models.Section, error) {
	if len(ids) == 0 {
		return []models.Section{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var found []models.Section
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Section, len(found))
	for _, sec := range found {
		byID[sec.ID] = sec
	}
	out := make([]models.Section, 0, len(found))
	for _, id := range ids {
		if sec, ok := byID[id]; ok {
			out = append(out, sec)
		}
	}
	return out, nil
}

// Delete removes a section by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
