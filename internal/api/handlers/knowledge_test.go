package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) CreateFromExternal(ctx context.Context, title, content, sourceURL string) (int, error) {
	args := m.Called(ctx, title, content, sourceURL)
	return args.Int(0), args.Error(1)
}

func (m *MockKnowledgeService) UpdateContent(ctx context.Context, id int64, newContent string) error {
	args := m.Called(ctx, id, newContent)
	return args.Error(0)
}

func (m *MockKnowledgeService) GetByID(ctx context.Context, id int64) (*domain.Chunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chunk), args.Error(1)
}

func (m *MockKnowledgeService) List(ctx context.Context, cursorToken string, limit int) ([]*domain.Chunk, string, error) {
	args := m.Called(ctx, cursorToken, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Chunk), args.String(1), args.Error(2)
}

func newTestChunk(id int64) *domain.Chunk {
	now := time.Now().UTC()
	return &domain.Chunk{
		ID:           id,
		Title:        "Test Chunk",
		Content:      "full content",
		ChunkContent: "chunk content",
		ChunkIndex:   0,
		SourceType:   domain.SourceTypeExternal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func requestWithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestKnowledgeHandler_Create(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("CreateFromExternal", mock.Anything, "Doc", "some external content", "https://example.com").
		Return(3, nil)

	body, _ := json.Marshal(CreateKnowledgeRequest{
		Title:     "Doc",
		Content:   "some external content",
		SourceURL: "https://example.com",
	})
	r := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"chunks_created":3`)
	svc.AssertExpectations(t)
}

func TestKnowledgeHandler_Create_MissingContent(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	body, _ := json.Marshal(CreateKnowledgeRequest{Title: "Doc"})
	r := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateFromExternal")
}

func TestKnowledgeHandler_Create_InvalidJSON(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Get(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("GetByID", mock.Anything, int64(42)).Return(newTestChunk(42), nil)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/knowledge/42", nil), "id", "42")
	w := httptest.NewRecorder()

	handler.Get(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
	svc.AssertExpectations(t)
}

func TestKnowledgeHandler_Get_NotFound(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrChunkNotFound)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/knowledge/99", nil), "id", "99")
	w := httptest.NewRecorder()

	handler.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler_Get_InvalidID(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/knowledge/abc", nil), "id", "abc")
	w := httptest.NewRecorder()

	handler.Get(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetByID")
}

func TestKnowledgeHandler_Update(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("UpdateContent", mock.Anything, int64(7), "new text").Return(nil)

	body, _ := json.Marshal(UpdateKnowledgeRequest{Content: "new text"})
	r := requestWithURLParam(httptest.NewRequest(http.MethodPut, "/knowledge/7", bytes.NewReader(body)), "id", "7")
	w := httptest.NewRecorder()

	handler.Update(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestKnowledgeHandler_Update_NotFound(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("UpdateContent", mock.Anything, int64(7), "new text").Return(domain.ErrChunkNotFound)

	body, _ := json.Marshal(UpdateKnowledgeRequest{Content: "new text"})
	r := requestWithURLParam(httptest.NewRequest(http.MethodPut, "/knowledge/7", bytes.NewReader(body)), "id", "7")
	w := httptest.NewRecorder()

	handler.Update(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler_List(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	chunks := []*domain.Chunk{newTestChunk(1), newTestChunk(2)}
	svc.On("List", mock.Anything, "", 20).Return(chunks, "next-token", nil)

	r := httptest.NewRequest(http.MethodGet, "/knowledge", nil)
	w := httptest.NewRecorder()

	handler.List(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next_cursor":"next-token"`)
	svc.AssertExpectations(t)
}

func TestKnowledgeHandler_List_CustomLimit(t *testing.T) {
	svc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(svc)

	svc.On("List", mock.Anything, "cur", 5).Return([]*domain.Chunk{}, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/knowledge?limit=5&cursor=cur", nil)
	w := httptest.NewRecorder()

	handler.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
