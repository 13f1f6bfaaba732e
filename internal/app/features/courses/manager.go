// internal/app/features/courses/manager.go
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/media"
	categorystore "github.com/dalemusser/studyplanet/internal/app/store/categories"
	progressstore "github.com/dalemusser/studyplanet/internal/app/store/courseprogress"
	coursestore "github.com/dalemusser/studyplanet/internal/app/store/courses"
	profilestore "github.com/dalemusser/studyplanet/internal/app/store/profiles"
	ratingstore "github.com/dalemusser/studyplanet/internal/app/store/ratings"
	sectionstore "github.com/dalemusser/studyplanet/internal/app/store/sections"
	subsectionstore "github.com/dalemusser/studyplanet/internal/app/store/subsections"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Manager owns the Course aggregate: a course, its ordered sections and
// their subsections. The instructor's and category's course lists are
// back-references it keeps in step on create and delete.
type Manager struct {
	db          *mongo.Database
	courses     *coursestore.Store
	users       *userstore.Store
	profiles    *profilestore.Store
	categories  *categorystore.Store
	sections    *sectionstore.Store
	subsections *subsectionstore.Store
	progress    *progressstore.Store
	ratings     *ratingstore.Store
	media       *media.Ingestor
	folder      string
	log         *zap.Logger
}

// NewManager wires a Manager. ing may be the disabled ingestor; creating or
// re-thumbnailing a course then fails with ServiceNotConfigured. folder is
// the upload namespace for thumbnails; empty uses the ingestor's default.
func NewManager(db *mongo.Database, ing *media.Ingestor, folder string, log *zap.Logger) *Manager {
	if ing == nil {
		ing = media.Disabled(log)
	}
	return &Manager{
		db:          db,
		courses:     coursestore.New(db),
		users:       userstore.New(db),
		profiles:    profilestore.New(db),
		categories:  categorystore.New(db),
		sections:    sectionstore.New(db),
		subsections: subsectionstore.New(db),
		progress:    progressstore.New(db),
		ratings:     ratingstore.New(db),
		media:       ing,
		folder:      folder,
		log:         log,
	}
}

// parseCourseID turns a client-supplied id into an ObjectID. Absent ids are
// a validation error; malformed ones cannot name a course and are NotFound.
func parseCourseID(raw string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return primitive.NilObjectID, apperr.Invalid("Course ID is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, "Could not find course with id: "+raw)
	}
	return id, nil
}

func (m *Manager) loadCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	c, err := m.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "Could not find course with id: "+id.Hex())
		}
		return nil, fmt.Errorf("load course %s: %w", id.Hex(), err)
	}
	return c, nil
}

// ingestThumbnail uploads h and classifies failures for the HTTP boundary.
func (m *Manager) ingestThumbnail(ctx context.Context, h media.FileHandle) (media.Result, error) {
	res, err := m.media.Ingest(ctx, h, m.folder)
	switch {
	case err == nil:
		if res.SecureURL == "" {
			return res, apperr.New(apperr.UpstreamFailure, "Failed to upload thumbnail image")
		}
		return res, nil
	case errors.Is(err, media.ErrServiceNotConfigured):
		return res, apperr.Wrap(apperr.ServiceNotConfigured,
			"Image upload service is not configured. Please set media provider credentials.", err)
	case errors.Is(err, media.ErrUnsupportedFileRepresentation):
		return res, apperr.Wrap(apperr.Validation, "Invalid image file format", err)
	case errors.Is(err, media.ErrSourceFileMissing):
		return res, apperr.Wrap(apperr.Validation, "Thumbnail file is missing", err)
	}
	return res, apperr.Wrap(apperr.UpstreamFailure, "Failed to upload thumbnail", err)
}
