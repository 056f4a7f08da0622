package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/domain"
)

type KnowledgeService interface {
	CreateFromExternal(ctx context.Context, title, content, sourceURL string) (int, error)
	UpdateContent(ctx context.Context, id int64, newContent string) error
	GetByID(ctx context.Context, id int64) (*domain.Chunk, error)
	List(ctx context.Context, cursorToken string, limit int) ([]*domain.Chunk, string, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateKnowledgeRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

type CreateKnowledgeResponse struct {
	ChunksCreated int `json:"chunks_created"`
}

type UpdateKnowledgeRequest struct {
	Content string `json:"content"`
}

type ChunkResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	ChunkContent string  `json:"chunk_content"`
	ChunkIndex   int     `json:"chunk_index"`
	ParentID     *int64  `json:"parent_id,omitempty"`
	SourceType   string  `json:"source_type"`
	SourceURL    *string `json:"source_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ListChunksResponse struct {
	Items      []*ChunkResponse `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func chunkToResponse(c *domain.Chunk) *ChunkResponse {
	return &ChunkResponse{
		ID:           c.ID,
		Title:        c.Title,
		Content:      c.Content,
		ChunkContent: c.ChunkContent,
		ChunkIndex:   c.ChunkIndex,
		ParentID:     c.ParentID,
		SourceType:   string(c.SourceType),
		SourceURL:    c.SourceURL,
		CreatedAt:    c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	created, err := h.svc.CreateFromExternal(r.Context(), req.Title, req.Content, req.SourceURL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, CreateKnowledgeResponse{ChunksCreated: created})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	chunk, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, chunkToResponse(chunk))
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req UpdateKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.svc.UpdateContent(r.Context(), id, req.Content); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 20)
	cursor := r.URL.Query().Get("cursor")

	chunks, next, err := h.svc.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, chunkToResponse(c))
	}

	api.Success(w, http.StatusOK, ListChunksResponse{Items: items, NextCursor: next})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}
