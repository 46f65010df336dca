package domain

import "time"

// Job is the registry record for one form-fill run. Records are stored by
// value; every mutation replaces the whole record, so readers always observe
// a complete snapshot.
type Job struct {
	ID          string
	UploadID    string
	FormURL     string
	Files       map[string]string // part name -> stored file path, immutable after creation
	Status      Status
	Result      *FillResult // set once, on transition to done
	Error       string      // set once, on transition to error
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// JobView is the status-read response shape polled by the frontend.
type JobView struct {
	JobID  string      `json:"job_id"`
	Status Status      `json:"status"`
	Result *FillResult `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (j Job) View() JobView {
	return JobView{
		JobID:  j.ID,
		Status: j.Status,
		Result: j.Result,
		Error:  j.Error,
	}
}
