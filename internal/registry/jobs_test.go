package registry_test

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"formfill-agent/internal/domain"
	"formfill-agent/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobs_CreateAndGet(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))

	files := map[string]string{
		domain.PartPassport: "data/uploads/u1/passport.pdf",
		domain.PartG28:      "data/uploads/u1/g28.pdf",
	}

	created := jobs.Create("u1", "https://example.com/form", files)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusQueued, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := jobs.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "u1", got.UploadID)
	assert.Equal(t, "https://example.com/form", got.FormURL)
	assert.Equal(t, files, got.Files)
	assert.Nil(t, got.Result)
	assert.Empty(t, got.Error)
}

func TestJobs_Get_NotFound(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))

	_, err := jobs.Get("nope")
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobs_SetStatus_ForwardOnly(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))
	job := jobs.Create("u1", "https://example.com/form", nil)

	require.NoError(t, jobs.SetStatus(job.ID, domain.StatusExtractingDocs))
	require.NoError(t, jobs.SetStatus(job.ID, domain.StatusAnalyzingForm))

	// Regressing or repeating a stage is rejected, and the record keeps its
	// current status.
	require.Error(t, jobs.SetStatus(job.ID, domain.StatusExtractingDocs))
	require.Error(t, jobs.SetStatus(job.ID, domain.StatusAnalyzingForm))

	got, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzingForm, got.Status)
}

func TestJobs_SetStatus_SkippingStagesAllowed(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))
	job := jobs.Create("u1", "https://example.com/form", nil)

	require.NoError(t, jobs.SetStatus(job.ID, domain.StatusFillingForm))
}

func TestJobs_SetStatus_NotFound(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))

	err := jobs.SetStatus("nope", domain.StatusExtractingDocs)
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobs_SetResult(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))
	job := jobs.Create("u1", "https://example.com/form", nil)

	require.NoError(t, jobs.SetStatus(job.ID, domain.StatusFillingForm))

	result := domain.FillResult{
		RequiredFields:  []domain.FieldRequirement{{Name: "full_name", Required: true}},
		ExtractedValues: []domain.FieldValue{{Name: "full_name", Value: "JOHN DOE"}},
		FillSummary:     "filled 1 of 1 fields",
	}
	require.NoError(t, jobs.SetResult(job.ID, result))

	got, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, result, *got.Result)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)

	// A terminal job accepts no further transitions.
	require.Error(t, jobs.SetError(job.ID, "too late"))
	require.Error(t, jobs.SetResult(job.ID, result))
	require.Error(t, jobs.SetStatus(job.ID, domain.StatusFillingForm))
}

func TestJobs_SetError(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))
	job := jobs.Create("u1", "https://example.com/form", nil)

	require.NoError(t, jobs.SetStatus(job.ID, domain.StatusExtractingDocs))
	require.NoError(t, jobs.SetError(job.ID, "extracting_docs: passport: pdftotext: exit status 1"))

	got, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, got.Status)
	assert.Nil(t, got.Result)
	assert.Equal(t, "extracting_docs: passport: pdftotext: exit status 1", got.Error)
	require.NotNil(t, got.CompletedAt)

	require.Error(t, jobs.SetResult(job.ID, domain.FillResult{}))
}

func TestJobs_List_MostRecentFirst(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))

	var ids []string
	for i := range 3 {
		job := jobs.Create(fmt.Sprintf("u%d", i), "https://example.com/form", nil)
		ids = append(ids, job.ID)
	}

	list := jobs.List()
	require.Len(t, list, 3)
	for i := range list[:len(list)-1] {
		assert.GreaterOrEqual(t, list[i].CreatedAt, list[i+1].CreatedAt)
	}
}

func TestJobs_ConcurrentReadsSeeCompleteSnapshots(t *testing.T) {
	t.Parallel()

	jobs := registry.NewJobs(slog.New(slog.DiscardHandler))
	job := jobs.Create("u1", "https://example.com/form", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = jobs.SetStatus(job.ID, domain.StatusExtractingDocs)
		_ = jobs.SetStatus(job.ID, domain.StatusAnalyzingForm)
		_ = jobs.SetStatus(job.ID, domain.StatusMappingFields)
		_ = jobs.SetStatus(job.ID, domain.StatusFillingForm)
		_ = jobs.SetResult(job.ID, domain.FillResult{FillSummary: "ok"})
	}()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := jobs.Get(job.ID)
				if !assert.NoError(t, err) {
					return
				}

				// A snapshot is never half-written: result only at done,
				// error only at error, neither before a terminal state.
				switch got.Status {
				case domain.StatusDone:
					assert.NotNil(t, got.Result)
					assert.Empty(t, got.Error)
				case domain.StatusError:
					assert.Nil(t, got.Result)
					assert.NotEmpty(t, got.Error)
				default:
					assert.Nil(t, got.Result)
					assert.Empty(t, got.Error)
					assert.Nil(t, got.CompletedAt)
				}
			}
		}()
	}

	wg.Wait()
	<-done
}
