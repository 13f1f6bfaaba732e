package userstore

import (
	"context"

	"github.com/dalemusser/studyplanet/internal/app/system/normalize"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements authz.RoleFetcher. The role gate calls it on every
// request so that role changes take effect without reissuing tokens.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a Fetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchRole returns the persisted role for userID. A missing user yields
// mongo.ErrNoDocuments.
func (f *Fetcher) FetchRole(ctx context.Context, userID primitive.ObjectID) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u struct {
		Role string `bson:"role"`
	}
	proj := options.FindOne().SetProjection(bson.M{"role": 1})
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		return "", err
	}
	return normalize.Role(u.Role), nil
}
