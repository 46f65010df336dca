package ocr_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"formfill-agent/internal/ocr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractText_DigitalPDF(t *testing.T) {
	t.Parallel()

	digital := strings.Repeat("This page has a digital text layer. ", 10)
	runner := &stubRunner{t: t, digitalText: digital}

	extractor := ocr.NewExtractorWithRunner(slog.New(slog.DiscardHandler), ocr.Config{}, runner)

	text, err := extractor.ExtractText(context.Background(), "passport.pdf")
	require.NoError(t, err)
	assert.Equal(t, digital, text)

	// No rasterization for a PDF with enough digital text.
	assert.Equal(t, []string{"pdftotext"}, runner.commands())
}

func TestExtractor_ExtractText_OCRFallback(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{
		t:           t,
		digitalText: " \n \f ",
		pageCount:   2,
		ocrText:     "SCANNED PAGE TEXT",
	}

	extractor := ocr.NewExtractorWithRunner(slog.New(slog.DiscardHandler), ocr.Config{}, runner)

	text, err := extractor.ExtractText(context.Background(), "passport.pdf")
	require.NoError(t, err)
	assert.Equal(t, "SCANNED PAGE TEXT\n\f\nSCANNED PAGE TEXT", text)

	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, runner.commands())
}

func TestExtractor_ExtractText_MaxPages(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{
		t:           t,
		digitalText: "",
		pageCount:   5,
		ocrText:     "PAGE",
	}

	extractor := ocr.NewExtractorWithRunner(slog.New(slog.DiscardHandler), ocr.Config{MaxPages: 2}, runner)

	text, err := extractor.ExtractText(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "PAGE\n\f\nPAGE", text)

	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, runner.commands())
}

func TestExtractor_ExtractText_PdftotextFails(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{t: t, failCommand: "pdftotext"}

	extractor := ocr.NewExtractorWithRunner(slog.New(slog.DiscardHandler), ocr.Config{}, runner)

	_, err := extractor.ExtractText(context.Background(), "broken.pdf")
	require.ErrorContains(t, err, "pdftotext")
}

func TestExtractor_ExtractText_NoPagesRendered(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{t: t, digitalText: "", pageCount: 0}

	extractor := ocr.NewExtractorWithRunner(slog.New(slog.DiscardHandler), ocr.Config{}, runner)

	_, err := extractor.ExtractText(context.Background(), "empty.pdf")
	require.ErrorContains(t, err, "rendered no pages")
}

// stubRunner plays the three external binaries. When invoked as pdftoppm it
// creates the page PNGs the extractor globs for, using the output prefix it
// was given.
type stubRunner struct {
	t           *testing.T
	digitalText string
	ocrText     string
	pageCount   int
	failCommand string

	ran []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.ran = append(s.ran, name)

	if name == s.failCommand {
		return nil, []byte("stub failure"), fmt.Errorf("exit status 1")
	}

	switch name {
	case "pdftotext":
		return []byte(s.digitalText), nil, nil

	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pageCount; i++ {
			path := fmt.Sprintf("%s-%d.png", prefix, i)
			require.NoError(s.t, os.WriteFile(path, []byte("png"), 0o644))
		}
		return nil, nil, nil

	case "tesseract":
		return []byte(s.ocrText), nil, nil

	default:
		return nil, nil, fmt.Errorf("unexpected command %q", name)
	}
}

func (s *stubRunner) commands() []string {
	return s.ran
}
