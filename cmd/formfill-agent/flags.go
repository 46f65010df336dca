package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"formfill-agent/internal/app"
	"formfill-agent/internal/config"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "formfill-agent",
		Usage:   "form fill orchestration service",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(cmd)

			log, cleanup := config.SetupLogger(cfg.App.LogFile, config.ParseLevel(cfg.App.LogLevel))
			defer func() {
				if err := cleanup(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
				}
			}()

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var configFile string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:    "upload-dir",
			Aliases: []string{"u"},
			Usage:   "Set directory to store uploaded documents in",
			Value:   "data/uploads",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_UPLOAD_DIR"),
				yaml.YAML("app.upload_dir", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "artifacts-dir",
			Usage: "Set directory to write pipeline artifacts to",
			Value: "data/artifacts",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_ARTIFACTS_DIR"),
				yaml.YAML("app.artifacts_dir", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "reports-dir",
			Usage: "Set directory to write review-sheet PDFs to",
			Value: "data/reports",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_REPORTS_DIR"),
				yaml.YAML("app.reports_dir", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Set JSON log file path",
			Value: "formfill-agent.log",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_LOG_FILE"),
				yaml.YAML("app.log_file", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Set log level (debug|info|warn|error)",
			Value: "info",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_LOG_LEVEL"),
				yaml.YAML("app.log_level", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "llm-provider",
			Usage: "Set language model provider (googleai|openai)",
			Value: "googleai",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_LLM_PROVIDER"),
				yaml.YAML("llm.provider", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "llm-api-key",
			Usage: "Set language model provider API key",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_LLM_API_KEY"),
				cli.EnvVar("GOOGLE_API_KEY"),
				cli.EnvVar("OPENAI_API_KEY"),
				yaml.YAML("llm.api_key", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "llm-model",
			Usage: "Set language model name",
			Value: "gemini-2.5-flash",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_LLM_MODEL"),
				yaml.YAML("llm.model", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "browser-base-url",
			Usage: "Set browser-automation provider base URL",
			Value: "https://api.browser-use.com/api/v1",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_BROWSER_BASE_URL"),
				yaml.YAML("browser.base_url", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:  "browser-api-key",
			Usage: "Set browser-automation provider API key",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_BROWSER_API_KEY"),
				cli.EnvVar("BROWSER_USE_API_KEY"),
				yaml.YAML("browser.api_key", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.DurationFlag{
			Name:  "browser-poll-interval",
			Usage: "Set agent task poll interval",
			Value: 2 * time.Second,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("FORMFILL_BROWSER_POLL_INTERVAL"),
				yaml.YAML("browser.poll_interval", altsrc.NewStringPtrSourcer(&configFile)),
			),
		},
		&cli.StringFlag{
			Name:    "ocr-pdftotext",
			Usage:   "Set pdftotext binary",
			Value:   "pdftotext",
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.pdftotext", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "ocr-pdftoppm",
			Usage:   "Set pdftoppm binary",
			Value:   "pdftoppm",
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.pdftoppm", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "ocr-tesseract",
			Usage:   "Set tesseract binary",
			Value:   "tesseract",
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.tesseract", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "ocr-lang",
			Usage:   "Set tesseract language",
			Value:   "eng",
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.lang", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.IntFlag{
			Name:    "ocr-min-text-length",
			Usage:   "Set minimum digital text length before OCR fallback",
			Value:   200,
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.min_text_length", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.IntFlag{
			Name:    "ocr-dpi",
			Usage:   "Set rasterization DPI for scanned PDFs",
			Value:   300,
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.dpi", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.IntFlag{
			Name:    "ocr-max-pages",
			Usage:   "Set maximum pages to OCR per document (0 = no limit)",
			Value:   0,
			Sources: cli.NewValueSourceChain(yaml.YAML("ocr.max_pages", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&configFile))),
		},
	}
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
