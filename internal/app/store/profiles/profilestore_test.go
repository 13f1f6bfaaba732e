package profilestore_test

import (
	"testing"

	profilestore "github.com/dalemusser/studyplanet/internal/app/store/profiles"
	ratingstore "github.com/dalemusser/studyplanet/internal/app/store/ratings"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Profile{About: "Teaches Go"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.About != "Teaches Go" {
		t.Errorf("About = %q", got.About)
	}
}

func TestRatings_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ratingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := models.RatingReview{ID: primitive.NewObjectID(), Rating: 4.5, Review: "Great"}
	if _, err := db.Collection("rating_reviews").InsertOne(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{r.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 1 || got[0].Rating != 4.5 {
		t.Errorf("GetByIDs = %+v", got)
	}

	empty, err := store.GetByIDs(ctx, nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v; want empty slice", empty, err)
	}
}
