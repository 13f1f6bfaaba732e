// internal/app/features/courses/fields.go
package courses

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
)

// ListField is a string list that arrived either already split (repeated
// form keys, a JSON array in a JSON body) or as one JSON-encoded array
// string, which is how the web client sends tags and instructions.
type ListField struct {
	Items   []string
	Raw     string
	Present bool
}

// ListOf wraps pre-parsed items.
func ListOf(items ...string) ListField {
	return ListField{Items: items, Present: true}
}

// ListFromJSON wraps a JSON-encoded array string.
func ListFromJSON(raw string) ListField {
	return ListField{Raw: raw, Present: true}
}

// listLabels carries the messages for one list field.
type listLabels struct {
	required string
	notArray string
	empty    string
}

var (
	tagLabels = listLabels{
		required: "Tags field is required",
		notArray: "Tags must be an array",
		empty:    "At least one tag is required",
	}
	instructionLabels = listLabels{
		required: "Instructions/Requirements field is required",
		notArray: "Instructions must be an array",
		empty:    "At least one requirement/instruction is required",
	}
)

// parse resolves f to a non-empty list. Every failure is a Validation error.
func (f ListField) parse(l listLabels) ([]string, error) {
	if !f.Present || (f.Items == nil && strings.TrimSpace(f.Raw) == "") {
		return nil, apperr.New(apperr.Validation, l.required)
	}

	items := f.Items
	if items == nil {
		var v any
		if err := json.Unmarshal([]byte(f.Raw), &v); err != nil {
			return nil, apperr.Wrap(apperr.Validation, "Invalid JSON format: "+err.Error(), err)
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, apperr.New(apperr.Validation, l.notArray)
		}
		items = make([]string, 0, len(arr))
		for _, el := range arr {
			switch x := el.(type) {
			case string:
				items = append(items, x)
			case float64, bool:
				items = append(items, fmt.Sprint(x))
			default:
				return nil, apperr.New(apperr.Validation, l.notArray)
			}
		}
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.Validation, l.empty)
	}
	return out, nil
}

// parsePrice accepts any non-negative decimal. Zero marks a free course.
func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Invalid("Course price is required")
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, apperr.Invalid("Price must be a valid number (0 or greater). Use 0 for free courses.")
	}
	return p, nil
}

// durationSeconds reads the leading whole number of seconds from a stored
// subsection duration ("125.4" -> 125). Anything without leading digits
// contributes nothing.
func durationSeconds(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// formatDuration renders seconds as "2h 5m", "5m 30s" or "30s".
func formatDuration(total int64) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
