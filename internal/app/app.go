package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"formfill-agent/internal/artifacts"
	"formfill-agent/internal/browser"
	"formfill-agent/internal/config"
	v1 "formfill-agent/internal/controller/http/v1"
	"formfill-agent/internal/infrastructure/report_generator"
	"formfill-agent/internal/llm"
	"formfill-agent/internal/ocr"
	"formfill-agent/internal/pipeline"
	"formfill-agent/internal/registry"
	"formfill-agent/internal/storage"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("upload_dir", a.cfg.App.UploadDirectory),
		slog.String("artifacts_dir", a.cfg.App.ArtifactsDirectory),
		slog.String("reports_dir", a.cfg.App.ReportsDirectory),
		slog.String("llm_provider", a.cfg.LLM.Provider),
	)

	for _, dir := range []string{
		a.cfg.App.UploadDirectory,
		a.cfg.App.ArtifactsDirectory,
		a.cfg.App.ReportsDirectory,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	model, err := llm.NewModel(ctx, a.log, llm.Config{
		Provider: a.cfg.LLM.Provider,
		APIKey:   a.cfg.LLM.APIKey,
		Model:    a.cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create llm model: %w", err)
	}

	extractor := ocr.NewExtractor(a.log, ocr.Config{
		Pdftotext:     a.cfg.OCR.Pdftotext,
		Pdftoppm:      a.cfg.OCR.Pdftoppm,
		Tesseract:     a.cfg.OCR.Tesseract,
		Language:      a.cfg.OCR.Language,
		MinTextLength: a.cfg.OCR.MinTextLength,
		DPI:           a.cfg.OCR.DPI,
		MaxPages:      a.cfg.OCR.MaxPages,
	})

	agent := browser.NewClient(a.log, browser.Config{
		BaseURL:      a.cfg.Browser.BaseURL,
		APIKey:       a.cfg.Browser.APIKey,
		PollInterval: a.cfg.Browser.PollInterval,
	})

	jobs := registry.NewJobs(a.log)
	uploads := storage.NewStore(a.log, a.cfg.App.UploadDirectory)
	saver := artifacts.NewSaver(a.log, a.cfg.App.ArtifactsDirectory)
	mapper := llm.NewMapper(a.log, model)

	runner := pipeline.NewRunner(
		a.log,
		jobs,
		extractor,
		agent,
		mapper,
		agent,
		saver,
		report_generator.New(),
		a.cfg.App.ReportsDirectory,
	)

	handler := v1.NewHandler(a.log, uploads, jobs, runner)
	server := v1.NewServer(a.cfg.HTTP, handler)

	return a.serve(ctx, server)
}

func (a *App) serve(ctx context.Context, server *v1.Server) error {
	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}
