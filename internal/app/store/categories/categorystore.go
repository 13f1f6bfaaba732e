package categorystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/studyplanet/internal/app/system/normalize"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateName is returned when a category with the same folded name exists.
var ErrDuplicateName = errors.New("a category with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("categories")}
}

// Create inserts a category. Name uniqueness is case-insensitive.
func (s *Store) Create(ctx context.Context, name, description string) (models.Category, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Category{}, mongo.CommandError{Message: "name is required"}
	}
	cat := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: strings.TrimSpace(description),
		CourseIDs:   []primitive.ObjectID{},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, cat); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Category{}, ErrDuplicateName
		}
		return models.Category{}, err
	}
	return cat, nil
}

// GetByID returns mongo.ErrNoDocuments when the category does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCourse records courseID on the category's course list.
func (s *Store) AddCourse(ctx context.Context, id, courseID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"courses": courseID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PullCourse removes courseID from the category's course list.
func (s *Store) PullCourse(ctx context.Context, id, courseID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$pull": bson.M{"courses": courseID}})
	return err
}
