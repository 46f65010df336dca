// Package artifacts dumps intermediate pipeline outputs (extracted document
// text, mapping results) to a local directory so the operator can inspect
// what the collaborators actually produced. Saving is best-effort: a failed
// dump is logged and never fails the job.
package artifacts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Saver struct {
	log *slog.Logger
	dir string
}

func NewSaver(log *slog.Logger, dir string) *Saver {
	return &Saver{
		log: log,
		dir: dir,
	}
}

func (s *Saver) SaveText(text, prefix string) {
	s.write(prefix, "txt", []byte(text))
}

func (s *Saver) SaveJSON(v any, prefix string) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error("failed to encode artifact", slog.String("prefix", prefix), slog.String("err", err.Error()))
		return
	}

	s.write(prefix, "json", data)
}

func (s *Saver) write(prefix, ext string, data []byte) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Error("failed to create artifacts dir", slog.String("dir", s.dir), slog.String("err", err.Error()))
		return
	}

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	name := fmt.Sprintf("%s_%s_%s.%s", prefix, timestamp, uuid.New().String()[:8], ext)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error("failed to save artifact", slog.String("path", path), slog.String("err", err.Error()))
		return
	}

	s.log.Debug("saved artifact", slog.String("path", path), slog.Int("bytes", len(data)))
}
