package v1

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"formfill-agent/internal/domain"
)

// maxUploadBytes caps the in-memory part of a multipart upload; two scanned
// PDFs fit comfortably.
const maxUploadBytes = 32 << 20

type CreateUploadResponse struct {
	UploadID string            `json:"upload_id"`
	Files    map[string]string `json:"files"`
}

// CreateUpload accepts the two required file parts and stores them under a
// fresh upload identifier.
func (h *Handler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	passport, err := h.formPart(r, domain.PartPassport)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer h.closePart(passport.Data)

	g28, err := h.formPart(r, domain.PartG28)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer h.closePart(g28.Data)

	h.log.InfoContext(r.Context(), "upload requested",
		slog.String("passport", passport.Filename),
		slog.String("g28", g28.Filename),
	)

	upload, err := h.uploads.Save(passport, g28)
	if err != nil {
		if domain.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.InfoContext(r.Context(), "upload saved", slog.String("upload_id", upload.ID))

	h.writeJSON(w, CreateUploadResponse{
		UploadID: upload.ID,
		Files:    upload.Files,
	})
}

func (h *Handler) formPart(r *http.Request, name string) (domain.UploadPart, error) {
	file, header, err := r.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.UploadPart{}, domain.NewValidationError("missing %s file", name)
		}
		return domain.UploadPart{}, domain.NewValidationError("invalid %s file: %v", name, err)
	}

	return domain.UploadPart{
		Filename: header.Filename,
		Data:     file,
	}, nil
}

func (h *Handler) closePart(data any) {
	if f, ok := data.(multipart.File); ok {
		if err := f.Close(); err != nil {
			h.log.Warn("failed to close upload part", slog.String("err", err.Error()))
		}
	}
}
