package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"formfill-agent/internal/domain"
)

// TextGenerator is the single-prompt completion the mapper depends on.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mapper produces form field values from extracted document text.
type Mapper struct {
	log *slog.Logger
	gen TextGenerator
}

func NewMapper(log *slog.Logger, gen TextGenerator) *Mapper {
	return &Mapper{
		log: log,
		gen: gen,
	}
}

// MapFields asks the model to fill the enumerated form fields from the
// passport and G-28 text, and validates the response before accepting it.
func (m *Mapper) MapFields(
	ctx context.Context,
	fields []domain.FieldRequirement,
	passportText, g28Text string,
) ([]domain.FieldValue, error) {
	prompt, err := buildMappingPrompt(fields, passportText, g28Text)
	if err != nil {
		return nil, err
	}

	m.log.Info("mapping fields",
		slog.Int("field_count", len(fields)),
		slog.Int("passport_len", len(passportText)),
		slog.Int("g28_len", len(g28Text)),
	)

	completion, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSONObject(completion)
	if err != nil {
		return nil, fmt.Errorf("mapping response: %w", err)
	}

	if err := validateMapping(raw); err != nil {
		return nil, fmt.Errorf("mapping response: %w", err)
	}

	var parsed struct {
		Values []domain.FieldValue `json:"values"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode mapping response: %w", err)
	}

	m.log.Info("mapped field values", slog.Int("value_count", len(parsed.Values)))

	return parsed.Values, nil
}

func buildMappingPrompt(fields []domain.FieldRequirement, passportText, g28Text string) (string, error) {
	fieldsJSON, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode field requirements: %w", err)
	}

	return fmt.Sprintf(`You are extracting values for an online form.

Required fields (JSON):
%s

Passport text:
%s

G-28 text:
%s

Return JSON with this shape:
{
  "values": [
    {
      "name": "field name from required fields",
      "value": "extracted value or empty string if missing",
      "source": "passport|g28|both|unknown",
      "confidence": 0.0,
      "notes": "short reason or location"
    }
  ]
}

Only return valid JSON. Do not include extra keys.`, fieldsJSON, passportText, g28Text), nil
}
