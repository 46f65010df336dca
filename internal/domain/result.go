package domain

// FieldRequirement describes one user-fillable field discovered on the target
// form during the analyzing_form stage.
type FieldRequirement struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Notes    string `json:"notes,omitempty"`
}

// FieldValue is one mapped value for a form field, produced by the
// mapping_fields stage and consumed by the filling_form stage.
type FieldValue struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Source     string  `json:"source,omitempty"` // passport|g28|both|unknown
	Confidence float64 `json:"confidence,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// FillResult is the payload attached to a job once it reaches done. The form
// is filled but never submitted; the human operator reviews and submits.
type FillResult struct {
	RequiredFields  []FieldRequirement `json:"required_fields"`
	ExtractedValues []FieldValue       `json:"extracted_values"`
	FillSummary     string             `json:"fill_summary,omitempty"`
}
