// Package ocr extracts text from uploaded PDFs using the poppler and
// tesseract binaries on the execution path: pdftotext for digital PDFs, and
// a pdftoppm+tesseract fallback for scanned ones.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language      string // tesseract language, default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
	MinTextLength int    // below this the digital text is considered empty and OCR runs
}

type Extractor struct {
	log    *slog.Logger
	cfg    Config
	runner Runner
}

func NewExtractor(log *slog.Logger, cfg Config) *Extractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 200
	}

	return &Extractor{
		log:    log,
		cfg:    cfg,
		runner: execRunner{log: log},
	}
}

// NewExtractorWithRunner is used by tests to stub the external commands.
func NewExtractorWithRunner(log *slog.Logger, cfg Config, runner Runner) *Extractor {
	e := NewExtractor(log, cfg)
	e.runner = runner
	return e
}

// ExtractText returns the text content of a PDF. The digital text layer is
// preferred; when it is shorter than MinTextLength the pages are rasterized
// and run through tesseract instead.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	text, pages, err := e.pdfToText(ctx, path)
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	if len(strings.TrimSpace(text)) >= e.cfg.MinTextLength {
		e.log.Debug("extracted digital pdf text",
			slog.String("path", path),
			slog.Int("pages", pages),
			slog.Int("text_len", len(text)),
		)
		return text, nil
	}

	e.log.Info("pdf text too short, running ocr",
		slog.String("path", path),
		slog.Int("text_len", len(text)),
	)

	text, pages, err = e.pdfToOCR(ctx, path)
	if err != nil {
		return "", err
	}

	e.log.Debug("extracted ocr pdf text",
		slog.String("path", path),
		slog.Int("pages", pages),
		slog.Int("text_len", len(text)),
	)

	return text, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, int, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, err
	}

	text := string(out)
	// pdftotext separates pages with form feeds
	pages := 1 + strings.Count(text, "\f")

	return text, pages, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (string, int, error) {
	tmpDir, err := os.MkdirTemp("", "formfill-ocr-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.log.Warn("failed to remove temp dir",
				slog.String("dir", tmpDir),
				slog.String("err", err.Error()),
			)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, _, err = e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (page-1.png, page-2.png, ...)
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		return "", 0, fmt.Errorf("pdftoppm rendered no pages for %q", path)
	}

	var b strings.Builder
	for _, page := range pages {
		// tesseract <page.png> stdout -l <lang>
		out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, page, "stdout", "-l", e.cfg.Language)
		if err != nil {
			return "", 0, fmt.Errorf("tesseract: %w", err)
		}

		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.Write(out)
	}

	return b.String(), len(pages), nil
}
