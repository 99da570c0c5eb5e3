package catalog

import (
	"slices"
	"strings"

	"academy/internal/domain"
)

// Query mirrors the catalog sidebar: free-text search plus multi-select
// level, type and category filters. Empty selections match everything.
type Query struct {
	Search     string
	Levels     []domain.Level
	Types      []domain.CourseType
	Categories []domain.Category
}

// ActiveFilters counts the filters currently narrowing the catalog.
func (q Query) ActiveFilters() int {
	n := len(q.Levels) + len(q.Types) + len(q.Categories)
	if strings.TrimSpace(q.Search) != "" {
		n++
	}
	return n
}

// Filter returns the courses matching q, in catalog order.
func Filter(courses []domain.Course, q Query) []domain.Course {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			continue
		}
		if len(q.Levels) > 0 && !slices.Contains(q.Levels, c.Level) {
			continue
		}
		if len(q.Types) > 0 && !slices.Contains(q.Types, c.Type) {
			continue
		}
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, c.Category) {
			continue
		}
		out = append(out, c)
	}
	return out
}
