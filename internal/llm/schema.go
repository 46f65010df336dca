package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// mappingSchema constrains the shape of the model's field-mapping response
// before it is trusted.
var mappingSchema = jsonschema.MustCompileString("mapping.json", `{
	"type": "object",
	"required": ["values"],
	"properties": {
		"values": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "value"],
				"properties": {
					"name":       {"type": "string"},
					"value":      {"type": "string"},
					"source":     {"type": "string"},
					"confidence": {"type": "number"},
					"notes":      {"type": ["string", "null"]}
				}
			}
		}
	}
}`)

func validateMapping(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	if err := mappingSchema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
