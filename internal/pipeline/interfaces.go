package pipeline

import (
	"context"

	"formfill-agent/internal/domain"
)

// JobUpdater is the registry surface the runner drives. Only the runner
// mutates job records.
type JobUpdater interface {
	Get(id string) (domain.Job, error)
	SetStatus(id string, status domain.Status) error
	SetResult(id string, result domain.FillResult) error
	SetError(id, message string) error
}

// DocumentExtractor performs the extracting_docs stage for one file.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// FormScanner performs the analyzing_form stage.
type FormScanner interface {
	ScanForm(ctx context.Context, formURL string) ([]domain.FieldRequirement, error)
}

// FieldMapper performs the mapping_fields stage.
type FieldMapper interface {
	MapFields(ctx context.Context, fields []domain.FieldRequirement, passportText, g28Text string) ([]domain.FieldValue, error)
}

// FormFiller performs the filling_form stage. It must not submit the form.
type FormFiller interface {
	FillForm(ctx context.Context, formURL string, values []domain.FieldValue) (string, error)
}

// ArtifactSaver dumps intermediate outputs for operator inspection.
type ArtifactSaver interface {
	SaveText(text, prefix string)
	SaveJSON(v any, prefix string)
}

// ReportGenerator renders the review-sheet PDF for a completed job.
type ReportGenerator interface {
	Generate(outputPath string, job domain.Job) error
}
