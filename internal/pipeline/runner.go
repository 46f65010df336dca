// Package pipeline drives a job through its stages: extracting_docs ->
// analyzing_form -> mapping_fields -> filling_form -> done. Each stage is one
// call to an external collaborator; the first failure terminates the job with
// the error status and the failing stage recorded in the message. Stages are
// never retried and a terminated job is never resumed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"formfill-agent/internal/domain"
)

type Runner struct {
	log        *slog.Logger
	jobs       JobUpdater
	extractor  DocumentExtractor
	scanner    FormScanner
	mapper     FieldMapper
	filler     FormFiller
	artifacts  ArtifactSaver
	reports    ReportGenerator
	reportsDir string
}

func NewRunner(
	log *slog.Logger,
	jobs JobUpdater,
	extractor DocumentExtractor,
	scanner FormScanner,
	mapper FieldMapper,
	filler FormFiller,
	artifacts ArtifactSaver,
	reports ReportGenerator,
	reportsDir string,
) *Runner {
	return &Runner{
		log:        log,
		jobs:       jobs,
		extractor:  extractor,
		scanner:    scanner,
		mapper:     mapper,
		filler:     filler,
		artifacts:  artifacts,
		reports:    reports,
		reportsDir: reportsDir,
	}
}

// Run executes all stages of one job sequentially. It is started in its own
// goroutine per job and reports every outcome through the registry; it never
// returns an error to the caller.
func (r *Runner) Run(ctx context.Context, jobID string) {
	log := r.log.With(slog.String("job_id", jobID))

	job, err := r.jobs.Get(jobID)
	if err != nil {
		log.ErrorContext(ctx, "job missing during execution", slog.String("err", err.Error()))
		return
	}

	log.InfoContext(ctx, "job start", slog.String("form_url", job.FormURL))

	passportText, g28Text, err := r.extractDocs(ctx, log, job)
	if err != nil {
		r.fail(log, jobID, domain.StatusExtractingDocs, err)
		return
	}

	fields, err := r.analyzeForm(ctx, log, job)
	if err != nil {
		r.fail(log, jobID, domain.StatusAnalyzingForm, err)
		return
	}

	values, err := r.mapFields(ctx, log, jobID, fields, passportText, g28Text)
	if err != nil {
		r.fail(log, jobID, domain.StatusMappingFields, err)
		return
	}

	summary, err := r.fillForm(ctx, log, job, values)
	if err != nil {
		r.fail(log, jobID, domain.StatusFillingForm, err)
		return
	}

	result := domain.FillResult{
		RequiredFields:  fields,
		ExtractedValues: values,
		FillSummary:     summary,
	}

	if err := r.jobs.SetResult(jobID, result); err != nil {
		log.ErrorContext(ctx, "failed to store job result", slog.String("err", err.Error()))
		return
	}

	r.artifacts.SaveJSON(result, "fill_result")
	r.generateReviewSheet(log, jobID)

	log.InfoContext(ctx, "job done",
		slog.Int("field_count", len(fields)),
		slog.Int("value_count", len(values)),
	)
}

func (r *Runner) extractDocs(ctx context.Context, log *slog.Logger, job domain.Job) (string, string, error) {
	if err := r.jobs.SetStatus(job.ID, domain.StatusExtractingDocs); err != nil {
		return "", "", err
	}

	passportPath := job.Files[domain.PartPassport]
	g28Path := job.Files[domain.PartG28]
	if passportPath == "" || g28Path == "" {
		return "", "", fmt.Errorf("passport and G-28 files are required")
	}

	log.InfoContext(ctx, "extracting document text",
		slog.String("passport", filepath.Base(passportPath)),
		slog.String("g28", filepath.Base(g28Path)),
	)

	passportText, err := r.extractor.ExtractText(ctx, passportPath)
	if err != nil {
		return "", "", fmt.Errorf("passport: %w", err)
	}

	g28Text, err := r.extractor.ExtractText(ctx, g28Path)
	if err != nil {
		return "", "", fmt.Errorf("g28: %w", err)
	}

	r.artifacts.SaveText(passportText, "passport_text")
	r.artifacts.SaveText(g28Text, "g28_text")

	log.InfoContext(ctx, "extracted document text",
		slog.Int("passport_len", len(passportText)),
		slog.Int("g28_len", len(g28Text)),
	)

	return passportText, g28Text, nil
}

func (r *Runner) analyzeForm(ctx context.Context, log *slog.Logger, job domain.Job) ([]domain.FieldRequirement, error) {
	if err := r.jobs.SetStatus(job.ID, domain.StatusAnalyzingForm); err != nil {
		return nil, err
	}

	fields, err := r.scanner.ScanForm(ctx, job.FormURL)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no fillable fields found on %s", job.FormURL)
	}

	r.artifacts.SaveJSON(fields, "form_fields")

	log.InfoContext(ctx, "analyzed form", slog.Int("field_count", len(fields)))

	return fields, nil
}

func (r *Runner) mapFields(
	ctx context.Context,
	log *slog.Logger,
	jobID string,
	fields []domain.FieldRequirement,
	passportText, g28Text string,
) ([]domain.FieldValue, error) {
	if err := r.jobs.SetStatus(jobID, domain.StatusMappingFields); err != nil {
		return nil, err
	}

	values, err := r.mapper.MapFields(ctx, fields, passportText, g28Text)
	if err != nil {
		return nil, err
	}

	r.artifacts.SaveJSON(values, "mapped_values")

	log.InfoContext(ctx, "mapped fields", slog.Int("value_count", len(values)))

	return values, nil
}

func (r *Runner) fillForm(ctx context.Context, log *slog.Logger, job domain.Job, values []domain.FieldValue) (string, error) {
	if err := r.jobs.SetStatus(job.ID, domain.StatusFillingForm); err != nil {
		return "", err
	}

	summary, err := r.filler.FillForm(ctx, job.FormURL, values)
	if err != nil {
		return "", err
	}

	log.InfoContext(ctx, "filled form", slog.Int("summary_len", len(summary)))

	return summary, nil
}

// fail converts a stage failure into the terminal error status. The stage
// name is kept in the message so the operator knows which collaborator broke.
func (r *Runner) fail(log *slog.Logger, jobID string, stage domain.Status, err error) {
	message := fmt.Sprintf("%s: %v", stage, err)

	log.Error("stage failed",
		slog.String("stage", string(stage)),
		slog.String("err", err.Error()),
	)

	if setErr := r.jobs.SetError(jobID, message); setErr != nil {
		log.Error("failed to record job error", slog.String("err", setErr.Error()))
	}
}

// generateReviewSheet is best-effort; a broken PDF never fails a done job.
func (r *Runner) generateReviewSheet(log *slog.Logger, jobID string) {
	if r.reports == nil {
		return
	}

	job, err := r.jobs.Get(jobID)
	if err != nil {
		log.Error("failed to load job for review sheet", slog.String("err", err.Error()))
		return
	}

	path := filepath.Join(r.reportsDir, jobID+".pdf")
	if err := r.reports.Generate(path, job); err != nil {
		log.Error("failed to generate review sheet", slog.String("err", err.Error()))
		return
	}

	log.Info("review sheet written", slog.String("path", path))
}
