package subsectionstore

import (
	"context"

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
	return &Store{c: db.Collection("subsections")}
}

// GetOrdered returns the subsections named by ids in the order of ids.
// With hideVideo the video URL is not read from the database at all.
func (s *Store) GetOrdered(ctx context.Context, ids []primitive.ObjectID, hideVideo bool) ([]models.SubSection, error) {
	if len(ids) == 0 {
		return []models.SubSection{}, nil
	}
	opts := options.Find()
	if hideVideo {
		opts.SetProjection(bson.M{"video_url": 0})
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var found []models.SubSection
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.SubSection, len(found))
	for _, ss := range found {
		byID[ss.ID] = ss
	}
	out := make([]models.SubSection, 0, len(found))
	for _, id := range ids {
		if ss, ok := byID[id]; ok {
			out = append(out, ss)
		}
	}
	return out, nil
}

// DeleteMany removes every subsection in ids and returns how many were deleted.
func (s *Store) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
