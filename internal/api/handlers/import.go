package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/domain"
)

// maxUploadBytes caps one uploaded document.
const maxUploadBytes = 10 * 1024 * 1024

type ImportService interface {
	ImportDocument(ctx context.Context, filename string, data []byte) (*domain.ImportRecord, error)
	ListRecords(ctx context.Context, cursorToken string, limit int) ([]*domain.ImportRecord, string, error)
	GetRecord(ctx context.Context, id int64) (*domain.ImportRecord, error)
}

// ArchiveStorage retrieves previously archived upload originals.
type ArchiveStorage interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

type ImportHandler struct {
	svc     ImportService
	archive ArchiveStorage
}

// NewImportHandler creates an ImportHandler. archive may be nil when no
// object storage is configured.
func NewImportHandler(svc ImportService, archive ArchiveStorage) *ImportHandler {
	return &ImportHandler{svc: svc, archive: archive}
}

type ImportRecordResponse struct {
	ID           int64   `json:"id"`
	Filename     string  `json:"filename"`
	FileType     string  `json:"file_type"`
	FileSize     int64   `json:"file_size"`
	FilePath     *string `json:"file_path,omitempty"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	ChunksCount  *int    `json:"chunks_count,omitempty"`
	CreatedAt    string  `json:"created_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

type ListImportRecordsResponse struct {
	Items      []*ImportRecordResponse `json:"items"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

func importRecordToResponse(rec *domain.ImportRecord) *ImportRecordResponse {
	resp := &ImportRecordResponse{
		ID:           rec.ID,
		Filename:     rec.Filename,
		FileType:     string(rec.FileType),
		FileSize:     rec.FileSize,
		FilePath:     rec.FilePath,
		Status:       string(rec.Status),
		ErrorMessage: rec.ErrorMessage,
		ChunksCount:  rec.ChunksCount,
		CreatedAt:    rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if rec.CompletedAt != nil {
		completed := rec.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.CompletedAt = &completed
	}
	return resp
}

// Upload ingests one multipart document under the "file" form field.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		api.HandleError(w, domain.ErrMissingFilename)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	record, err := h.svc.ImportDocument(r.Context(), header.Filename, data)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	// Imports that fail mid-pipeline still return the record: the caller
	// reads the outcome off its status.
	api.Success(w, http.StatusCreated, importRecordToResponse(record))
}

func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 20)
	cursor := r.URL.Query().Get("cursor")

	records, next, err := h.svc.ListRecords(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ImportRecordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, importRecordToResponse(rec))
	}

	api.Success(w, http.StatusOK, ListImportRecordsResponse{Items: items, NextCursor: next})
}

func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	record, err := h.svc.GetRecord(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, importRecordToResponse(record))
}

// DownloadOriginal streams the archived upload for a record.
func (h *ImportHandler) DownloadOriginal(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		api.HandleError(w, domain.NewDomainError(domain.ErrCodeCapabilityUnavailable, "object storage not configured"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	record, err := h.svc.GetRecord(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if record.FilePath == nil {
		api.Error(w, http.StatusNotFound, "no archived file for this import")
		return
	}

	data, contentType, err := h.archive.Get(r.Context(), *record.FilePath)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to fetch archived file")
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
