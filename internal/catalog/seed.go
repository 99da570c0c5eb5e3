// Package catalog holds the course catalog and its storefront filter.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"academy/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the built-in catalog.
func Seed() []domain.Course {
	courses, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return courses
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) ([]domain.Course, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML list of courses.
func Parse(raw []byte) ([]domain.Course, error) {
	var courses []domain.Course
	if err := yaml.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if err := Validate(courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Validate checks ids are unique and enumerations are known. Free courses
// must carry a zero price.
func Validate(courses []domain.Course) error {
	seen := make(map[int64]struct{}, len(courses))
	for _, c := range courses {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("catalog: duplicate course id %d: %w", c.ID, domain.ErrInvalidCourse)
		}
		seen[c.ID] = struct{}{}
		if err := c.Draft().Validate(); err != nil {
			return fmt.Errorf("catalog: course %d: %w", c.ID, err)
		}
		if c.IsFree() && c.Price != 0 {
			return fmt.Errorf("catalog: free course %d has price %.2f: %w", c.ID, c.Price, domain.ErrInvalidCourse)
		}
		modules := make(map[string]struct{}, len(c.Modules))
		for _, m := range c.Modules {
			if _, dup := modules[m.ID]; dup {
				return fmt.Errorf("catalog: course %d: duplicate module %q: %w", c.ID, m.ID, domain.ErrInvalidCourse)
			}
			modules[m.ID] = struct{}{}
		}
	}
	return nil
}
