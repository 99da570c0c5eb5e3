package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLintAcceptsQueries(t *testing.T) {
	violations, err := lint([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lint() error = %v", err)
	}
	for _, v := range violations {
		t.Errorf("unexpected violation: %s", v)
	}
}

func TestLintReportsBadMarkers(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QOk = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n\n" +
		"const QDup = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;`\n\n" +
		"const QMissing = `select 3;`\n\n" +
		"const NotSQL = `hello`\n"
	if err := os.WriteFile(filepath.Join(dir, "q.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint() error = %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("violations = %v, want 2", violations)
	}
	if violations[0].name != "QDup" || !strings.Contains(violations[0].message, "already used") {
		t.Errorf("first violation = %s", violations[0])
	}
	if violations[1].name != "QMissing" {
		t.Errorf("second violation = %s", violations[1])
	}
}
