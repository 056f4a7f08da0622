package domain

import "time"

// ImportStatus is the lifecycle state of a document ingestion attempt.
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportRecord tracks one ingestion attempt. It is created in
// ImportStatusProcessing and transitions exactly once to completed or failed.
type ImportRecord struct {
	ID           int64
	Filename     string
	FileType     SourceType
	FileSize     int64
	FilePath     *string
	Status       ImportStatus
	ErrorMessage *string
	ChunksCount  *int
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Complete marks the record as successfully finished with the given chunk count.
func (r *ImportRecord) Complete(chunksCount int, at time.Time) error {
	if r.Status.IsTerminal() {
		return ErrImportRecordTerminal
	}
	r.Status = ImportStatusCompleted
	r.ChunksCount = &chunksCount
	r.CompletedAt = &at
	return nil
}

// Fail marks the record as failed with the causing message.
func (r *ImportRecord) Fail(message string, at time.Time) error {
	if r.Status.IsTerminal() {
		return ErrImportRecordTerminal
	}
	r.Status = ImportStatusFailed
	r.ErrorMessage = &message
	r.CompletedAt = &at
	return nil
}
