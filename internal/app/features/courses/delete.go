// internal/app/features/courses/delete.go
package courses

import (
	"context"
	"fmt"

	"github.com/dalemusser/studyplanet/internal/app/policy/coursepolicy"
	"github.com/dalemusser/studyplanet/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Delete removes a course owned by callerID together with everything it
// owns: sections, their subsections and the students' progress records.
// Enrolled students, the instructor and the category lose their reference
// to it.
//
// The steps run in one transaction where the deployment supports it. On a
// standalone server they run in order without one, and a failure partway
// leaves the earlier steps applied. Every step is idempotent, so retrying
// the delete finishes the job.
func (m *Manager) Delete(ctx context.Context, callerID primitive.ObjectID, rawID string) error {
	id, err := parseCourseID(rawID)
	if err != nil {
		return err
	}
	c, err := m.loadCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := coursepolicy.RequireOwner(c, callerID, "delete"); err != nil {
		return err
	}

	var unenrolled, sections, subsections int64
	err = txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		unenrolled, sections, subsections = 0, 0, 0

		n, err := m.users.PullCourseFromMany(ctx, c.StudentsEnrolled, id)
		if err != nil {
			return fmt.Errorf("unenroll students: %w", err)
		}
		unenrolled = n

		secs, err := m.sections.GetOrdered(ctx, c.SectionIDs)
		if err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		for _, s := range secs {
			n, err := m.subsections.DeleteMany(ctx, s.SubSectionIDs)
			if err != nil {
				return fmt.Errorf("delete subsections of %s: %w", s.ID.Hex(), err)
			}
			subsections += n
		}
		// Delete by the course's list, not the loaded sections, so a
		// section whose lookup raced a concurrent delete is still covered.
		for _, sid := range c.SectionIDs {
			n, err := m.sections.Delete(ctx, sid)
			if err != nil {
				return fmt.Errorf("delete section %s: %w", sid.Hex(), err)
			}
			sections += n
		}

		if _, err := m.progress.DeleteByCourse(ctx, id); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		if _, err := m.courses.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}

		if err := m.users.PullCourse(ctx, c.InstructorID, id); err != nil {
			return fmt.Errorf("remove instructor back-reference: %w", err)
		}
		if err := m.categories.PullCourse(ctx, c.CategoryID, id); err != nil {
			return fmt.Errorf("remove category back-reference: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info("course deleted",
		zap.String("course_id", id.Hex()),
		zap.String("instructor_id", callerID.Hex()),
		zap.Int64("students_unenrolled", unenrolled),
		zap.Int64("sections", sections),
		zap.Int64("subsections", subsections))
	return nil
}
