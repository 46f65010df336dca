package report_generator_test

import (
	"os"
	"path/filepath"
	"testing"

	"formfill-agent/internal/domain"
	"formfill-agent/internal/infrastructure/report_generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	job := domain.Job{
		ID:      "job-1",
		FormURL: "https://example.com/form",
		Status:  domain.StatusDone,
		Result: &domain.FillResult{
			ExtractedValues: []domain.FieldValue{
				{Name: "full_name", Value: "JOHN DOE", Source: "passport"},
				{Name: "passport_number", Value: "X1234567", Source: "passport"},
			},
			FillSummary: "filled 2 of 2 fields",
		},
	}

	path := filepath.Join(t.TempDir(), "job-1.pdf")
	require.NoError(t, report_generator.New().Generate(path, job))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGenerator_Generate_NoResult(t *testing.T) {
	t.Parallel()

	job := domain.Job{ID: "job-1", Status: domain.StatusError}

	path := filepath.Join(t.TempDir(), "job-1.pdf")
	err := report_generator.New().Generate(path, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
