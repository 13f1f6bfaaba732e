// internal/app/features/courses/create.go
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/inputval"
	"github.com/dalemusser/studyplanet/internal/app/system/normalize"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CreateInput is a new course as submitted by an instructor. Text fields
// are raw client values; Create trims, validates and sanitizes them.
type CreateInput struct {
	Name             string `validate:"notblank" label:"Course name"`
	Description      string `validate:"notblank" label:"Course description"`
	WhatYouWillLearn string `validate:"notblank" label:"Course benefits"`
	CategoryID       string `validate:"notblank,objectid" label:"Category"`
	Price            string
	Status           string
	Tags             ListField
	Instructions     ListField
	Thumbnail        media.FileHandle
}

type createFields struct {
	description  string
	outcomes     string
	categoryID   primitive.ObjectID
	price        float64
	status       string
	tags         []string
	instructions []string
}

// validate runs every client-side check, in the order the client sees them.
func (in CreateInput) validate() (createFields, error) {
	var f createFields

	if res := inputval.Validate(in); res.HasErrors() {
		return f, apperr.Invalid("%s", res.First())
	}
	f.categoryID, _ = primitive.ObjectIDFromHex(strings.TrimSpace(in.CategoryID))

	var err error
	if f.description, err = richText("Course description", in.Description); err != nil {
		return f, err
	}
	if f.outcomes, err = richText("Course benefits", in.WhatYouWillLearn); err != nil {
		return f, err
	}
	if f.price, err = parsePrice(in.Price); err != nil {
		return f, err
	}
	if in.Thumbnail == nil {
		return f, apperr.Invalid("Course thumbnail image is required")
	}
	if f.tags, err = in.Tags.parse(tagLabels); err != nil {
		return f, err
	}
	if f.instructions, err = in.Instructions.parse(instructionLabels); err != nil {
		return f, err
	}

	f.status = normalize.CourseStatus(in.Status)
	if f.status == "" {
		f.status = models.CourseStatusDraft
	}
	if !models.IsValidCourseStatus(f.status) {
		return f, apperr.Invalid("Status must be either 'Draft' or 'Published'")
	}
	return f, nil
}

// Create validates in, uploads the thumbnail and stores a new course owned
// by callerID. The caller must currently be an Instructor and the category
// must exist.
//
// Once the course is stored, Create reports success. Failing to record the
// course on the instructor or category is logged and left for a later
// repair; the course itself is not removed.
func (m *Manager) Create(ctx context.Context, callerID primitive.ObjectID, in CreateInput) (models.Course, error) {
	f, err := in.validate()
	if err != nil {
		return models.Course{}, err
	}

	inst, err := m.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, apperr.Missing("User")
		}
		return models.Course{}, fmt.Errorf("load instructor: %w", err)
	}
	if inst.Role != models.RoleInstructor {
		return models.Course{}, apperr.Denied("Only instructors can create courses")
	}

	cat, err := m.categories.GetByID(ctx, f.categoryID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, apperr.Missing("Category")
		}
		return models.Course{}, fmt.Errorf("load category: %w", err)
	}

	thumb, err := m.ingestThumbnail(ctx, in.Thumbnail)
	if err != nil {
		return models.Course{}, err
	}

	c, err := m.courses.Create(ctx, models.Course{
		Name:              strings.TrimSpace(in.Name),
		Description:       f.description,
		WhatYouWillLearn:  f.outcomes,
		InstructorID:      inst.ID,
		CategoryID:        cat.ID,
		Price:             f.price,
		Tags:              f.tags,
		Instructions:      f.instructions,
		Thumbnail:         thumb.SecureURL,
		ThumbnailPublicID: thumb.PublicID,
		Status:            f.status,
	})
	if err != nil {
		return models.Course{}, fmt.Errorf("insert course: %w", err)
	}

	if err := m.users.AddCourse(ctx, inst.ID, c.ID); err != nil {
		m.log.Warn("course created but instructor back-reference failed",
			zap.String("course_id", c.ID.Hex()),
			zap.String("instructor_id", inst.ID.Hex()),
			zap.Error(err))
	}
	if err := m.categories.AddCourse(ctx, cat.ID, c.ID); err != nil {
		m.log.Warn("course created but category back-reference failed",
			zap.String("course_id", c.ID.Hex()),
			zap.String("category_id", cat.ID.Hex()),
			zap.Error(err))
	}

	m.log.Info("course created",
		zap.String("course_id", c.ID.Hex()),
		zap.String("instructor_id", inst.ID.Hex()),
		zap.String("status", c.Status))
	return c, nil
}
