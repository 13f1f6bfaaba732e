package payments

import (
	"context"
	"errors"
	"fmt"

	coursestore "github.com/dalemusser/studyplanet/internal/app/store/courses"
	progressstore "github.com/dalemusser/studyplanet/internal/app/store/courseprogress"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Enroller grants course access after a confirmed payment.
type Enroller struct {
	db       *mongo.Database
	courses  *coursestore.Store
	users    *userstore.Store
	progress *progressstore.Store
	log      *zap.Logger
}

func NewEnroller(db *mongo.Database, log *zap.Logger) *Enroller {
	return &Enroller{
		db:       db,
		courses:  coursestore.New(db),
		users:    userstore.New(db),
		progress: progressstore.New(db),
		log:      log,
	}
}

// Enroll links userID to every course in courseIDs and creates an empty
// progress record for each. Repeating an enrollment changes nothing.
func (e *Enroller) Enroll(ctx context.Context, userID primitive.ObjectID, courseIDs []primitive.ObjectID) error {
	return txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		for _, cid := range courseIDs {
			if err := e.courses.AddStudent(ctx, cid, userID); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return apperr.Missing("course")
				}
				return fmt.Errorf("enroll in course %s: %w", cid.Hex(), err)
			}
			if err := e.users.AddCourse(ctx, userID, cid); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return apperr.Missing("user")
				}
				return fmt.Errorf("record course %s on user: %w", cid.Hex(), err)
			}
			if err := e.progress.Ensure(ctx, cid, userID); err != nil {
				return fmt.Errorf("create progress for course %s: %w", cid.Hex(), err)
			}
			e.log.Info("student enrolled", zap.String("user_id", userID.Hex()), zap.String("course_id", cid.Hex()))
		}
		return nil
	})
}
