package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"formfill-agent/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/jszwec/csvutil"
)

type CreateJobRequest struct {
	UploadID string `json:"upload_id"`
	FormURL  string `json:"form_url"`
}

type CreateJobResponse struct {
	JobID string `json:"job_id"`
}

// CreateJob allocates a queued job for a stored upload and starts its
// pipeline in the background. The response returns immediately; progress is
// observed by polling GetJob.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UploadID == "" || req.FormURL == "" {
		http.Error(w, "upload_id and form_url are required", http.StatusBadRequest)
		return
	}

	files, err := h.uploads.Paths(req.UploadID)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			http.Error(w, "upload not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	job := h.jobs.Create(req.UploadID, req.FormURL, files)

	// Detach the pipeline from the request lifetime; it outlives this
	// response and is cancelled only by process shutdown.
	go h.runner.Run(context.WithoutCancel(r.Context()), job.ID)

	h.log.InfoContext(r.Context(), "job accepted",
		slog.String("job_id", job.ID),
		slog.String("upload_id", req.UploadID),
		slog.String("form_url", req.FormURL),
	)

	h.writeJSON(w, CreateJobResponse{JobID: job.ID})
}

// GetJob returns the polled status view of one job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := h.jobs.Get(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, job.View())
}

type JobSummary struct {
	JobID     string        `json:"job_id"`
	UploadID  string        `json:"upload_id"`
	FormURL   string        `json:"form_url"`
	Status    domain.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type ListJobsResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// ListJobs returns all jobs of this process, most recent first.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()

	summaries := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, JobSummary{
			JobID:     job.ID,
			UploadID:  job.UploadID,
			FormURL:   job.FormURL,
			Status:    job.Status,
			CreatedAt: job.CreatedAt,
		})
	}

	h.writeJSON(w, ListJobsResponse{Jobs: summaries})
}

type jobCSVRow struct {
	JobID       string `csv:"job_id"`
	UploadID    string `csv:"upload_id"`
	FormURL     string `csv:"form_url"`
	Status      string `csv:"status"`
	Error       string `csv:"error"`
	CreatedAt   string `csv:"created_at"`
	CompletedAt string `csv:"completed_at"`
}

// ExportJobs streams the job table as CSV for operator bookkeeping.
func (h *Handler) ExportJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()

	rows := make([]jobCSVRow, 0, len(jobs))
	for _, job := range jobs {
		row := jobCSVRow{
			JobID:     job.ID,
			UploadID:  job.UploadID,
			FormURL:   job.FormURL,
			Status:    string(job.Status),
			Error:     job.Error,
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
		}
		if job.CompletedAt != nil {
			row.CompletedAt = job.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="jobs.csv"`)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("failed to write csv export", slog.String("err", err.Error()))
	}
}
