package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"academy/internal/domain"
)

// Source describes where the startup catalog comes from. Repo and Path are
// both optional; the embedded seed is the last resort.
type Source struct {
	Repo   domain.CourseRepository
	Path   string
	Logger zerolog.Logger
}

// Load resolves the startup catalog: the repository when it has rows, then
// the YAML file at Path, then the embedded seed.
func Load(ctx context.Context, src Source) []domain.Course {
	if src.Repo != nil {
		courses, err := src.Repo.List(ctx)
		switch {
		case err != nil:
			src.Logger.Warn().Err(err).Msg("catalog: repository unavailable; falling back")
		case len(courses) == 0:
			src.Logger.Info().Msg("catalog: repository empty; falling back")
		default:
			if err := Validate(courses); err != nil {
				src.Logger.Warn().Err(err).Msg("catalog: repository catalog invalid; falling back")
				break
			}
			src.Logger.Info().Int("courses", len(courses)).Msg("catalog: loaded from database")
			return courses
		}
	}
	if src.Path != "" {
		courses, err := LoadFile(src.Path)
		if err == nil {
			src.Logger.Info().Int("courses", len(courses)).Str("path", src.Path).Msg("catalog: loaded from file")
			return courses
		}
		src.Logger.Warn().Err(err).Str("path", src.Path).Msg("catalog: file unavailable; using built-in seed")
	}
	return Seed()
}
