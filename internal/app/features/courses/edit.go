// internal/app/features/courses/edit.go
package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/policy/coursepolicy"
	coursestore "github.com/dalemusser/studyplanet/internal/app/store/courses"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyplanet/internal/app/system/inputval"
	"github.com/dalemusser/studyplanet/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EditInput lists every field an owner may change. Nil (or not Present)
// fields are left as they are. Fields not listed here cannot be edited.
type EditInput struct {
	CourseID         string
	Name             *string
	Description      *string
	WhatYouWillLearn *string
	Price            *string
	CategoryID       *string
	Status           *string
	Tags             ListField
	Instructions     ListField
	Thumbnail        media.FileHandle
}

func check(label string, v string, tag string) error {
	if fe := inputval.Var(label, v, tag); fe != nil {
		return apperr.Invalid("%s", fe.Message)
	}
	return nil
}

// richText sanitizes v and requires something to be left afterwards.
func richText(label, v string) (string, error) {
	clean := htmlsanitize.Text(v)
	if err := check(label, clean, "notblank"); err != nil {
		return "", err
	}
	return clean, nil
}

// toUpdate validates each supplied field on its own and builds the store
// update. The thumbnail is handled separately because it needs an upload.
func (in EditInput) toUpdate() (coursestore.Update, error) {
	var upd coursestore.Update

	if in.Name != nil {
		if err := check("Course name", *in.Name, "notblank"); err != nil {
			return upd, err
		}
		v := strings.TrimSpace(*in.Name)
		upd.Name = &v
	}
	if in.Description != nil {
		v, err := richText("Course description", *in.Description)
		if err != nil {
			return upd, err
		}
		upd.Description = &v
	}
	if in.WhatYouWillLearn != nil {
		v, err := richText("Course benefits", *in.WhatYouWillLearn)
		if err != nil {
			return upd, err
		}
		upd.WhatYouWillLearn = &v
	}
	if in.Price != nil {
		p, err := parsePrice(*in.Price)
		if err != nil {
			return upd, err
		}
		upd.Price = &p
	}
	if in.CategoryID != nil {
		if err := check("Category", *in.CategoryID, "objectid"); err != nil {
			return upd, err
		}
		id, _ := primitive.ObjectIDFromHex(strings.TrimSpace(*in.CategoryID))
		upd.CategoryID = &id
	}
	if in.Status != nil {
		st := normalize.CourseStatus(*in.Status)
		if err := check("Status", st, "coursestatus"); err != nil {
			return upd, err
		}
		upd.Status = &st
	}
	if in.Tags.Present {
		tags, err := in.Tags.parse(tagLabels)
		if err != nil {
			return upd, err
		}
		upd.Tags = &tags
	}
	if in.Instructions.Present {
		ins, err := in.Instructions.parse(instructionLabels)
		if err != nil {
			return upd, err
		}
		upd.Instructions = &ins
	}
	return upd, nil
}

// Edit applies in to a course owned by callerID and returns the populated
// result. A new thumbnail replaces the stored URL; the previous object is
// left in storage.
func (m *Manager) Edit(ctx context.Context, callerID primitive.ObjectID, in EditInput) (*CourseView, error) {
	id, err := parseCourseID(in.CourseID)
	if err != nil {
		return nil, err
	}
	c, err := m.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := coursepolicy.RequireOwner(c, callerID, "edit"); err != nil {
		return nil, err
	}

	upd, err := in.toUpdate()
	if err != nil {
		return nil, err
	}
	if upd.CategoryID != nil && *upd.CategoryID != c.CategoryID {
		if _, err := m.categories.GetByID(ctx, *upd.CategoryID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.Missing("Category")
			}
			return nil, fmt.Errorf("load category: %w", err)
		}
	}

	if in.Thumbnail != nil {
		thumb, err := m.ingestThumbnail(ctx, in.Thumbnail)
		if err != nil {
			return nil, err
		}
		upd.Thumbnail = &thumb.SecureURL
		upd.ThumbnailPublicID = &thumb.PublicID
	}

	if !upd.IsEmpty() {
		if err := m.courses.Update(ctx, id, upd); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.New(apperr.NotFound, "Could not find course with id: "+id.Hex())
			}
			return nil, fmt.Errorf("update course: %w", err)
		}
		if upd.CategoryID != nil && *upd.CategoryID != c.CategoryID {
			m.moveCategory(ctx, id, c.CategoryID, *upd.CategoryID)
		}
		m.log.Info("course updated", zap.String("course_id", id.Hex()), zap.String("instructor_id", callerID.Hex()))
	}

	updated, err := m.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, updated, false)
}

// moveCategory keeps the category back-references in step with a changed
// category. Failures are logged like on create.
func (m *Manager) moveCategory(ctx context.Context, courseID, from, to primitive.ObjectID) {
	if err := m.categories.PullCourse(ctx, from, courseID); err != nil {
		m.log.Warn("old category back-reference not removed",
			zap.String("course_id", courseID.Hex()), zap.String("category_id", from.Hex()), zap.Error(err))
	}
	if err := m.categories.AddCourse(ctx, to, courseID); err != nil {
		m.log.Warn("new category back-reference not added",
			zap.String("course_id", courseID.Hex()), zap.String("category_id", to.Hex()), zap.Error(err))
	}
}
