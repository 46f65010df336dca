package artifacts_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formfill-agent/internal/artifacts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaver_SaveText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saver := artifacts.NewSaver(slog.New(slog.DiscardHandler), dir)

	saver.SaveText("extracted passport text", "passport_text")

	path := findArtifact(t, dir, "passport_text", ".txt")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "extracted passport text", string(data))
}

func TestSaver_SaveJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saver := artifacts.NewSaver(slog.New(slog.DiscardHandler), dir)

	saver.SaveJSON(map[string]string{"name": "full_name"}, "mapped_values")

	path := findArtifact(t, dir, "mapped_values", ".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "full_name"}`, string(data))
}

func TestSaver_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	saver := artifacts.NewSaver(slog.New(slog.DiscardHandler), dir)

	saver.SaveText("x", "form_fields")

	findArtifact(t, dir, "form_fields", ".txt")
}

func findArtifact(t *testing.T, dir, prefix, ext string) string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, prefix+"_"), "unexpected artifact name %q", name)
	assert.True(t, strings.HasSuffix(name, ext), "unexpected artifact name %q", name)

	return filepath.Join(dir, name)
}
