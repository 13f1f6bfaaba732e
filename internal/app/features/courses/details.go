// internal/app/features/courses/details.go
package courses

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// InstructorView is a course's instructor with their profile inlined.
type InstructorView struct {
	models.User
	Profile *models.Profile `json:"additionalDetails,omitempty"`
}

// SectionView is a section with its subsections inlined, in order.
type SectionView struct {
	models.Section
	SubSections []models.SubSection `json:"subSection"`
}

// CourseView is a fully populated course.
type CourseView struct {
	models.Course
	Instructor *InstructorView       `json:"instructor"`
	Category   *models.Category      `json:"category"`
	Ratings    []models.RatingReview `json:"ratingAndReviews"`
	Sections   []SectionView         `json:"courseContent"`
}

// TotalSeconds sums the duration of every subsection in the course.
func (v *CourseView) TotalSeconds() int64 {
	var total int64
	for _, sec := range v.Sections {
		for _, ss := range sec.SubSections {
			total += durationSeconds(ss.Duration)
		}
	}
	return total
}

// CourseDetails is what the public course page shows.
type CourseDetails struct {
	Course        CourseView `json:"courseDetails"`
	TotalDuration string     `json:"totalDuration"`
}

// FullCourseDetails adds the viewer's completed lectures.
type FullCourseDetails struct {
	CourseDetails
	CompletedVideos []primitive.ObjectID `json:"completedVideos"`
}

// GetDetails returns the populated course with lecture video URLs withheld.
func (m *Manager) GetDetails(ctx context.Context, rawID string) (*CourseDetails, error) {
	id, err := parseCourseID(rawID)
	if err != nil {
		return nil, err
	}
	c, err := m.loadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := m.populate(ctx, c, true)
	if err != nil {
		return nil, err
	}
	return &CourseDetails{Course: *view, TotalDuration: formatDuration(view.TotalSeconds())}, nil
}

// GetFullDetails returns the populated course with video URLs and the ids of
// the lectures userID has completed. A viewer with no progress record gets
// an empty list.
func (m *Manager) GetFullDetails(ctx context.Context, rawID string, userID primitive.ObjectID) (*FullCourseDetails, error) {
	id, err := parseCourseID(rawID)
	if err != nil {
		return nil, err
	}

	var (
		view      *CourseView
		completed = []primitive.ObjectID{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := m.loadCourse(gctx, id)
		if err != nil {
			return err
		}
		view, err = m.populate(gctx, c, false)
		return err
	})
	g.Go(func() error {
		p, err := m.progress.Get(gctx, id, userID)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil
		case err != nil:
			return fmt.Errorf("load progress: %w", err)
		}
		if p.CompletedVideos != nil {
			completed = p.CompletedVideos
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &FullCourseDetails{
		CourseDetails: CourseDetails{
			Course:        *view,
			TotalDuration: formatDuration(view.TotalSeconds()),
		},
		CompletedVideos: completed,
	}, nil
}

// populate loads everything a course refers to. The instructor, category,
// ratings and content are independent and load concurrently. A dangling
// instructor or category reference comes back nil rather than failing.
func (m *Manager) populate(ctx context.Context, c *models.Course, hideVideo bool) (*CourseView, error) {
	view := &CourseView{Course: *c}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := m.users.GetByID(gctx, c.InstructorID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load instructor: %w", err)
		}
		iv := &InstructorView{User: *u}
		if u.ProfileID != nil {
			p, err := m.profiles.GetByID(gctx, *u.ProfileID)
			if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("load instructor profile: %w", err)
			}
			iv.Profile = p
		}
		view.Instructor = iv
		return nil
	})

	g.Go(func() error {
		cat, err := m.categories.GetByID(gctx, c.CategoryID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		view.Category = cat
		return nil
	})

	g.Go(func() error {
		rs, err := m.ratings.GetByIDs(gctx, c.RatingIDs)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		view.Ratings = rs
		return nil
	})

	g.Go(func() error {
		secs, err := m.sections.GetOrdered(gctx, c.SectionIDs)
		if err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		out := make([]SectionView, 0, len(secs))
		for _, s := range secs {
			subs, err := m.subsections.GetOrdered(gctx, s.SubSectionIDs, hideVideo)
			if err != nil {
				return fmt.Errorf("load subsections of %s: %w", s.ID.Hex(), err)
			}
			out = append(out, SectionView{Section: s, SubSections: subs})
		}
		view.Sections = out
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
