package domain

import "io"

// Part names for the two required upload files.
const (
	PartPassport = "passport"
	PartG28      = "g28"
)

// UploadPart is one file part of an upload request.
type UploadPart struct {
	Filename string
	Data     io.Reader
}

// Upload references the two stored files of a completed upload. Immutable
// after creation.
type Upload struct {
	ID    string
	Files map[string]string // part name -> stored file path
}
