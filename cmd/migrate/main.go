package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"academy/internal/catalog"
	"academy/internal/infra"
	"academy/migrations"
)

func main() {
	flag.Usage = usage
	catalogPath := flag.String("catalog", "", "YAML catalog used by the seed command (defaults to the built-in catalog)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fatal("load config", err)
	}
	if cfg.DatabaseURL == "" {
		fatal("config", infra.ErrNoDatabase)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		fatal("open database", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		fatal("ping database", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		fatal("set dialect", err)
	}

	switch args[0] {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "seed":
		err = seed(ctx, cfg, *catalogPath, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(args[0], err)
	}
	logger.Info().Str("command", args[0]).Msg("done")
}

// seed replaces the courses table with the given or built-in catalog.
func seed(ctx context.Context, cfg *infra.Config, path string, logger infra.Logger) error {
	courses := catalog.Seed()
	if path != "" {
		var err error
		if courses, err = catalog.LoadFile(path); err != nil {
			return err
		}
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := catalog.NewRepository(infra.NewSQLRunner(pool, logger))
	if err := repo.ReplaceAll(ctx, courses); err != nil {
		return err
	}
	logger.Info().Int("courses", len(courses)).Msg("catalog seeded")
	return nil
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "migrate: %s: %v\n", step, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-catalog file.yaml] <command>")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up      apply pending migrations")
	fmt.Fprintln(os.Stderr, "  down    roll back the last migration")
	fmt.Fprintln(os.Stderr, "  status  show migration status")
	fmt.Fprintln(os.Stderr, "  seed    replace the courses table with the catalog")
}
