package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"academy/internal/domain"
	"academy/internal/infra"
	"academy/internal/sqlinline"
)

// Repository stores the seed catalog in Postgres, one JSON payload per course.
type Repository struct {
	sql infra.SQLExecutor
}

// NewRepository creates a Repository over the given executor.
func NewRepository(sql infra.SQLExecutor) *Repository {
	return &Repository{sql: sql}
}

// List returns the stored catalog in position order.
func (r *Repository) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCourses)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		var c domain.Course
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("decode course: %w", err)
		}
		c.Progress = nil
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

// ReplaceAll overwrites the stored catalog.
func (r *Repository) ReplaceAll(ctx context.Context, courses []domain.Course) error {
	if err := Validate(courses); err != nil {
		return err
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteCourses); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}
	for i, c := range courses {
		c.Progress = nil
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode course %d: %w", c.ID, err)
		}
		if _, err := r.sql.Exec(ctx, sqlinline.QInsertCourse, c.ID, i, c.Title, payload); err != nil {
			return fmt.Errorf("insert course %d: %w", c.ID, err)
		}
	}
	return nil
}

var _ domain.CourseRepository = (*Repository)(nil)
