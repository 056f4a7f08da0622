package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/pagination"
	"github.com/cloo-solutions/corpusai/internal/telemetry"
	"github.com/cloo-solutions/corpusai/internal/vectortext"
)

// DocumentParser extracts plain text from raw document bytes. Word and PDF
// parsers are external collaborators; failures propagate as ingestion
// failures.
type DocumentParser interface {
	Parse(fileType domain.SourceType, data []byte) (string, error)
}

// IngestChunkStore defines the store interface for persisting chunks
// produced by ingestion.
type IngestChunkStore interface {
	Insert(ctx context.Context, input InsertChunkInput) (int64, error)
}

// ImportRecordStore defines the repository interface for import records.
type ImportRecordStore interface {
	Create(ctx context.Context, record *domain.ImportRecord) error
	Update(ctx context.Context, record *domain.ImportRecord) error
	GetByID(ctx context.Context, id int64) (*domain.ImportRecord, error)
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.ImportRecord, error)
}

// UploadStorage archives raw upload bytes. Optional; archival failures never
// fail an import.
type UploadStorage interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
}

// InsertChunkInput carries one chunk's fields to the store. EmbeddingText is
// the codec's canonical bracketed form.
type InsertChunkInput struct {
	Title         string
	Content       string
	ChunkContent  string
	ChunkIndex    int
	ParentID      *int64
	EmbeddingText string
	Metadata      *string
	SourceType    domain.SourceType
	SourceURL     *string
}

// ImportService orchestrates parse, chunk, embed and store for uploaded
// documents, tracking per-document status on an ImportRecord.
type ImportService struct {
	records   ImportRecordStore
	chunks    IngestChunkStore
	parser    DocumentParser
	embedder  *Embedder
	storage   UploadStorage
	chunkSize int
	now       func() time.Time
}

// NewImportService creates an ImportService. storage may be nil.
func NewImportService(records ImportRecordStore, chunks IngestChunkStore, parser DocumentParser, embedder *Embedder, storage UploadStorage, chunkSize int) *ImportService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ImportService{
		records:   records,
		chunks:    chunks,
		parser:    parser,
		embedder:  embedder,
		storage:   storage,
		chunkSize: chunkSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ImportDocument ingests one uploaded document. A blank filename is rejected
// before any record exists; every other failure is captured on the returned
// record, which transitions exactly once to completed or failed. Chunks
// persisted before a failure stay in the store.
func (s *ImportService) ImportDocument(ctx context.Context, filename string, data []byte) (*domain.ImportRecord, error) {
	if filename == "" {
		return nil, domain.ErrMissingFilename
	}

	ctx, span := telemetry.StartSpan(ctx, "ImportService.ImportDocument", telemetry.SpanAttributes{
		Operation: "import",
	})
	defer span.End()

	fileType, typeErr := domain.SourceTypeFromFilename(filename)

	record := &domain.ImportRecord{
		Filename: filename,
		FileType: fileType,
		FileSize: int64(len(data)),
		Status:   domain.ImportStatusProcessing,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}

	if typeErr != nil {
		return s.failRecord(ctx, record, typeErr)
	}

	s.archiveUpload(ctx, record, data)

	content, err := s.parser.Parse(fileType, data)
	if err != nil {
		return s.failRecord(ctx, record, err)
	}

	chunks := SplitText(content, s.chunkSize)
	for i, chunk := range chunks {
		embedding := s.embedder.Embed(ctx, chunk)
		parentID := record.ID
		_, err := s.chunks.Insert(ctx, InsertChunkInput{
			Title:         filename,
			Content:       content,
			ChunkContent:  chunk,
			ChunkIndex:    i,
			ParentID:      &parentID,
			EmbeddingText: vectortext.Encode(embedding),
			SourceType:    fileType,
		})
		if err != nil {
			return s.failRecord(ctx, record, err)
		}
	}

	if err := record.Complete(len(chunks), s.now()); err != nil {
		return record, err
	}
	if err := s.records.Update(ctx, record); err != nil {
		return record, fmt.Errorf("failed to update import record: %w", err)
	}
	return record, nil
}

// ListRecords returns import records, newest first.
func (s *ImportService) ListRecords(ctx context.Context, cursorToken string, limit int) ([]*domain.ImportRecord, string, error) {
	cursor, err := pagination.DecodeCursor(cursorToken)
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	if limit <= 0 {
		limit = 20
	}

	records, err := s.records.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", err
	}

	next := pagination.CreateNextCursor(records, limit,
		func(r *domain.ImportRecord) int64 { return r.ID },
		func(r *domain.ImportRecord) time.Time { return r.CreatedAt })
	return records, next, nil
}

// GetRecord returns one import record by id.
func (s *ImportService) GetRecord(ctx context.Context, id int64) (*domain.ImportRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *ImportService) failRecord(ctx context.Context, record *domain.ImportRecord, cause error) (*domain.ImportRecord, error) {
	if err := record.Fail(cause.Error(), s.now()); err != nil {
		return record, err
	}
	if err := s.records.Update(ctx, record); err != nil {
		return record, fmt.Errorf("failed to update import record: %w", err)
	}
	return record, nil
}

func (s *ImportService) archiveUpload(ctx context.Context, record *domain.ImportRecord, data []byte) {
	if s.storage == nil {
		return
	}
	key := fmt.Sprintf("imports/%d/%s", record.ID, record.Filename)
	if err := s.storage.Store(ctx, key, data, contentTypeFor(record.FileType)); err != nil {
		log.Printf("failed to archive upload %s: %v", key, err)
		return
	}
	record.FilePath = &key
}

func contentTypeFor(fileType domain.SourceType) string {
	switch fileType {
	case domain.SourceTypePDF:
		return "application/pdf"
	case domain.SourceTypeWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case domain.SourceTypeMarkdown:
		return "text/markdown"
	}
	return "application/octet-stream"
}
