package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur-trivia/internal/migration"
)

func TestMigrateCommands(t *testing.T) {
	t.Setenv("APP_PORT", "0")
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "trivia.db"))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FILE", "")

	run := func(args ...string) string {
		t.Helper()
		cmd := NewCommand(Definition{Name: "trivia", Migrations: migration.Trivia()})
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute(), strings.Join(args, " "))
		return out.String()
	}

	run("migrate", "up", "--to", "202004050000_add_question_ratings")
	out := run("migrate", "status")
	assert.Contains(t, out, "applied  202004010000_create_categories_questions")
	assert.Contains(t, out, "applied  202004050000_add_question_ratings")
	assert.Contains(t, out, "pending  202004060000_create_players")

	run("migrate", "up")
	assert.NotContains(t, run("migrate", "status"), "pending")

	run("migrate", "down")
	assert.Contains(t, run("migrate", "status"), "pending  202004060000_create_players")

	run("migrate", "down", "--all")
	assert.NotContains(t, run("migrate", "status"), "applied")
}

func TestMigrateRejectsUnknownTarget(t *testing.T) {
	t.Setenv("APP_PORT", "0")
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "fyyur.db"))

	cmd := NewCommand(Definition{Name: "fyyur", Migrations: migration.Fyyur()})
	cmd.SetArgs([]string{"migrate", "up", "--to", "nope"})
	cmd.SetOut(&bytes.Buffer{})
	assert.ErrorContains(t, cmd.Execute(), `unknown migration "nope"`)
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	e := echo.New()
	e.HideBanner, e.HidePort = true, true
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, e, "127.0.0.1:0") }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
