package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	LLM
	Browser
	OCR
	HTTP
}

type App struct {
	UploadDirectory    string
	ArtifactsDirectory string
	ReportsDirectory   string
	LogFile            string
	LogLevel           string
}

type LLM struct {
	Provider string
	APIKey   string
	Model    string
}

type Browser struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
}

type OCR struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	Language      string
	MinTextLength int
	DPI           int
	MaxPages      int
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			UploadDirectory:    cmd.String("upload-dir"),
			ArtifactsDirectory: cmd.String("artifacts-dir"),
			ReportsDirectory:   cmd.String("reports-dir"),
			LogFile:            cmd.String("log-file"),
			LogLevel:           cmd.String("log-level"),
		},
		LLM: LLM{
			Provider: cmd.String("llm-provider"),
			APIKey:   cmd.String("llm-api-key"),
			Model:    cmd.String("llm-model"),
		},
		Browser: Browser{
			BaseURL:      cmd.String("browser-base-url"),
			APIKey:       cmd.String("browser-api-key"),
			PollInterval: cmd.Duration("browser-poll-interval"),
		},
		OCR: OCR{
			Pdftotext:     cmd.String("ocr-pdftotext"),
			Pdftoppm:      cmd.String("ocr-pdftoppm"),
			Tesseract:     cmd.String("ocr-tesseract"),
			Language:      cmd.String("ocr-lang"),
			MinTextLength: int(cmd.Int("ocr-min-text-length")),
			DPI:           int(cmd.Int("ocr-dpi")),
			MaxPages:      int(cmd.Int("ocr-max-pages")),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
	}
}
