package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportDocument(ctx context.Context, filename string, data []byte) (*domain.ImportRecord, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportRecord), args.Error(1)
}

func (m *MockImportService) ListRecords(ctx context.Context, cursorToken string, limit int) ([]*domain.ImportRecord, string, error) {
	args := m.Called(ctx, cursorToken, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ImportRecord), args.String(1), args.Error(2)
}

func (m *MockImportService) GetRecord(ctx context.Context, id int64) (*domain.ImportRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportRecord), args.Error(1)
}

type MockArchiveStorage struct {
	mock.Mock
}

func (m *MockArchiveStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func multipartUpload(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func newTestImportRecord(id int64, status domain.ImportStatus) *domain.ImportRecord {
	return &domain.ImportRecord{
		ID:        id,
		Filename:  "doc.md",
		FileType:  domain.SourceTypeMarkdown,
		FileSize:  42,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

func TestImportHandler_Upload(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	content := []byte("# Doc\n\nbody")
	svc.On("ImportDocument", mock.Anything, "doc.md", content).
		Return(newTestImportRecord(1, domain.ImportStatusCompleted), nil)

	body, contentType := multipartUpload(t, "file", "doc.md", content)
	r := httptest.NewRequest(http.MethodPost, "/import", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Upload(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	svc.AssertExpectations(t)
}

func TestImportHandler_Upload_FailedImportStillReturnsRecord(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	content := []byte("binary junk")
	failed := newTestImportRecord(2, domain.ImportStatusFailed)
	msg := "invalid source type"
	failed.ErrorMessage = &msg
	svc.On("ImportDocument", mock.Anything, "doc.xyz", content).Return(failed, nil)

	body, contentType := multipartUpload(t, "file", "doc.xyz", content)
	r := httptest.NewRequest(http.MethodPost, "/import", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Upload(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
	assert.Contains(t, w.Body.String(), "invalid source type")
}

func TestImportHandler_Upload_MissingFile(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	body, contentType := multipartUpload(t, "wrong_field", "doc.md", []byte("x"))
	r := httptest.NewRequest(http.MethodPost, "/import", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.Upload(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ImportDocument")
}

func TestImportHandler_Upload_NotMultipart(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	r := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader([]byte("plain body")))
	w := httptest.NewRecorder()

	handler.Upload(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandler_List(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	records := []*domain.ImportRecord{
		newTestImportRecord(1, domain.ImportStatusCompleted),
		newTestImportRecord(2, domain.ImportStatusProcessing),
	}
	svc.On("ListRecords", mock.Anything, "", 20).Return(records, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/import", nil)
	w := httptest.NewRecorder()

	handler.List(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"processing"`)
	svc.AssertExpectations(t)
}

func TestImportHandler_Get(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	svc.On("GetRecord", mock.Anything, int64(5)).Return(newTestImportRecord(5, domain.ImportStatusProcessing), nil)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/import/5", nil), "id", "5")
	w := httptest.NewRecorder()

	handler.Get(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)
}

func TestImportHandler_Get_NotFound(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	svc.On("GetRecord", mock.Anything, int64(5)).Return(nil, domain.ErrImportRecordNotFound)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/import/5", nil), "id", "5")
	w := httptest.NewRecorder()

	handler.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportHandler_DownloadOriginal(t *testing.T) {
	svc := new(MockImportService)
	archive := new(MockArchiveStorage)
	handler := NewImportHandler(svc, archive)

	record := newTestImportRecord(5, domain.ImportStatusCompleted)
	path := "imports/5/doc.md"
	record.FilePath = &path
	svc.On("GetRecord", mock.Anything, int64(5)).Return(record, nil)
	archive.On("Get", mock.Anything, path).Return([]byte("# archived"), "text/markdown", nil)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/import/5/file", nil), "id", "5")
	w := httptest.NewRecorder()

	handler.DownloadOriginal(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown", w.Header().Get("Content-Type"))
	assert.Equal(t, "# archived", w.Body.String())
	archive.AssertExpectations(t)
}

func TestImportHandler_DownloadOriginal_NoArchive(t *testing.T) {
	svc := new(MockImportService)
	handler := NewImportHandler(svc, nil)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/import/5/file", nil), "id", "5")
	w := httptest.NewRecorder()

	handler.DownloadOriginal(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportHandler_DownloadOriginal_NoFilePath(t *testing.T) {
	svc := new(MockImportService)
	archive := new(MockArchiveStorage)
	handler := NewImportHandler(svc, archive)

	svc.On("GetRecord", mock.Anything, int64(5)).Return(newTestImportRecord(5, domain.ImportStatusFailed), nil)

	r := requestWithURLParam(httptest.NewRequest(http.MethodGet, "/import/5/file", nil), "id", "5")
	w := httptest.NewRecorder()

	handler.DownloadOriginal(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	archive.AssertNotCalled(t, "Get")
}
