// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/studyplanet/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role maps any casing of a known role to its stored spelling
// ("instructor" -> "Instructor"). Unknown roles come back trimmed but
// otherwise unchanged so validation can reject them.
func Role(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range []string{models.RoleStudent, models.RoleInstructor, models.RoleAdmin} {
		if strings.EqualFold(s, r) {
			return r
		}
	}
	return s
}

// CourseStatus maps any casing of Draft/Published to its stored spelling.
// Empty input stays empty so callers can apply their default.
func CourseStatus(s string) string {
	s = strings.TrimSpace(s)
	for _, st := range []string{models.CourseStatusDraft, models.CourseStatusPublished} {
		if strings.EqualFold(s, st) {
			return st
		}
	}
	return s
}
