package llm_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"formfill-agent/internal/domain"
	"formfill-agent/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_MapFields_HappyPath(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		completion: "```json\n" + `{
			"values": [
				{"name": "full_name", "value": "JOHN DOE", "source": "passport", "confidence": 0.95, "notes": "MRZ line 1"},
				{"name": "receipt_number", "value": "", "source": "unknown", "confidence": 0.0, "notes": "not present in either document"}
			]
		}` + "\n```",
	}

	mapper := llm.NewMapper(slog.New(slog.DiscardHandler), gen)

	fields := []domain.FieldRequirement{
		{Name: "full_name", Label: "Full name", Type: "text", Required: true},
		{Name: "receipt_number", Label: "Receipt number", Type: "text"},
	}

	values, err := mapper.MapFields(context.Background(), fields, "passport text", "g28 text")
	require.NoError(t, err)
	require.Len(t, values, 2)

	assert.Equal(t, "full_name", values[0].Name)
	assert.Equal(t, "JOHN DOE", values[0].Value)
	assert.Equal(t, "passport", values[0].Source)
	assert.InDelta(t, 0.95, values[0].Confidence, 0.001)

	assert.Equal(t, "receipt_number", values[1].Name)
	assert.Empty(t, values[1].Value)

	// The prompt carries the field list and both document texts.
	assert.Contains(t, gen.prompt, `"full_name"`)
	assert.Contains(t, gen.prompt, "passport text")
	assert.Contains(t, gen.prompt, "g28 text")
}

func TestMapper_MapFields_GeneratorError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: fmt.Errorf("rate limited")}
	mapper := llm.NewMapper(slog.New(slog.DiscardHandler), gen)

	_, err := mapper.MapFields(context.Background(), nil, "p", "g")
	require.ErrorContains(t, err, "rate limited")
}

func TestMapper_MapFields_NoJSONInCompletion(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{completion: "Sorry, I cannot extract any values."}
	mapper := llm.NewMapper(slog.New(slog.DiscardHandler), gen)

	_, err := mapper.MapFields(context.Background(), nil, "p", "g")
	require.ErrorContains(t, err, "no JSON object")
}

func TestMapper_MapFields_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		completion string
	}{
		{
			name:       "missing values key",
			completion: `{"fields": []}`,
		},
		{
			name:       "item without value",
			completion: `{"values": [{"name": "full_name"}]}`,
		},
		{
			name:       "value is not a string",
			completion: `{"values": [{"name": "age", "value": 42}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{completion: tt.completion}
			mapper := llm.NewMapper(slog.New(slog.DiscardHandler), gen)

			_, err := mapper.MapFields(context.Background(), nil, "p", "g")
			require.ErrorContains(t, err, "schema validation failed")
		})
	}
}

type fakeGenerator struct {
	completion string
	err        error
	prompt     string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}
