package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"formfill-agent/internal/domain"
)

type UploadStore interface {
	Save(passport, g28 domain.UploadPart) (domain.Upload, error)
	Paths(uploadID string) (map[string]string, error)
}

type JobRegistry interface {
	Create(uploadID, formURL string, files map[string]string) domain.Job
	Get(id string) (domain.Job, error)
	List() []domain.Job
}

// JobRunner executes a job's pipeline. Run blocks until the job is terminal,
// so the handler starts it on its own goroutine.
type JobRunner interface {
	Run(ctx context.Context, jobID string)
}

type Handler struct {
	log     *slog.Logger
	uploads UploadStore
	jobs    JobRegistry
	runner  JobRunner
}

func NewHandler(log *slog.Logger, uploads UploadStore, jobs JobRegistry, runner JobRunner) *Handler {
	return &Handler{
		log:     log,
		uploads: uploads,
		jobs:    jobs,
		runner:  runner,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		h.log.Warn("failed to write response", slog.String("err", err.Error()))
	}
}
