package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"formfill-agent/internal/domain"

	"github.com/google/uuid"
)

// pdfMagic is the header every PDF payload starts with.
var pdfMagic = []byte("%PDF-")

// Store persists upload pairs on the local filesystem under
// <root>/<upload_id>/<part>.pdf. Identifiers are always freshly generated,
// so existing uploads are never overwritten.
type Store struct {
	log  *slog.Logger
	root string
}

func NewStore(log *slog.Logger, root string) *Store {
	return &Store{
		log:  log,
		root: root,
	}
}

// Save validates and persists the two required file parts, returning the
// generated upload identifier and the stored paths keyed by part name.
func (s *Store) Save(passport, g28 domain.UploadPart) (domain.Upload, error) {
	parts := map[string]domain.UploadPart{
		domain.PartPassport: passport,
		domain.PartG28:      g28,
	}

	for name, part := range parts {
		if part.Data == nil {
			return domain.Upload{}, domain.NewValidationError("missing %s file", name)
		}
	}

	uploadID := uuid.New().String()
	dir := filepath.Join(s.root, uploadID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.Upload{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	s.log.Info("saving uploads", slog.String("upload_id", uploadID), slog.String("dir", dir))

	files := make(map[string]string, len(parts))
	for _, name := range []string{domain.PartPassport, domain.PartG28} {
		path, err := s.savePart(dir, name, parts[name])
		if err != nil {
			// Leave nothing behind for a rejected upload.
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				s.log.Warn("failed to clean up rejected upload",
					slog.String("dir", dir),
					slog.String("err", rmErr.Error()),
				)
			}
			return domain.Upload{}, err
		}
		files[name] = path
	}

	return domain.Upload{ID: uploadID, Files: files}, nil
}

func (s *Store) savePart(dir, name string, part domain.UploadPart) (_ string, err error) {
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(part.Data, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return "", domain.NewValidationError("%s is not a PDF file", name)
	}

	path := filepath.Join(dir, name+".pdf")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), part.Data)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.log.Debug("saved upload part",
		slog.String("part", name),
		slog.String("filename", part.Filename),
		slog.String("path", path),
	)

	return path, nil
}

// Paths resolves the stored file paths of an upload, keyed by part name.
// Returns domain.ErrUploadNotFound for an unknown identifier.
func (s *Store) Paths(uploadID string) (map[string]string, error) {
	// Identifiers are always generated UUIDs; anything else never names an
	// upload and must not reach the filesystem.
	if _, err := uuid.Parse(uploadID); err != nil {
		return nil, domain.ErrUploadNotFound
	}

	dir := filepath.Join(s.root, uploadID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		files[strings.ToLower(stem)] = filepath.Join(dir, name)
	}

	if files[domain.PartPassport] == "" || files[domain.PartG28] == "" {
		return nil, domain.ErrUploadNotFound
	}

	return files, nil
}
