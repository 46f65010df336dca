package domain

// Status is the externally visible job state. The string values are part of
// the HTTP contract and are consumed verbatim by the polling frontend.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusExtractingDocs Status = "extracting_docs"
	StatusAnalyzingForm  Status = "analyzing_form"
	StatusMappingFields  Status = "mapping_fields"
	StatusFillingForm    Status = "filling_form"
	StatusDone           Status = "done"
	StatusError          Status = "error"
)

// stageOrder fixes the forward order of pipeline stages. A job may only move
// to a later stage or to the error state; it never regresses.
var stageOrder = map[Status]int{
	StatusQueued:         0,
	StatusExtractingDocs: 1,
	StatusAnalyzingForm:  2,
	StatusMappingFields:  3,
	StatusFillingForm:    4,
	StatusDone:           5,
}

func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether moving from s to next keeps the stage order
// monotonic. Error is reachable from any non-terminal state; terminal states
// have no outgoing transitions.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}

	if next == StatusError {
		return true
	}

	nextOrder, ok := stageOrder[next]
	if !ok {
		return false
	}

	return nextOrder > stageOrder[s]
}
