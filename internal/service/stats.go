package service

import (
	"context"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

// StatsStore defines the counting queries backing the stats endpoint.
type StatsStore interface {
	CountChunks(ctx context.Context) (int64, error)
	CountImportsByStatus(ctx context.Context) (map[domain.ImportStatus]int64, error)
}

// Stats summarizes the state of the knowledge corpus.
type Stats struct {
	Chunks            int64 `json:"chunks"`
	ImportsProcessing int64 `json:"imports_processing"`
	ImportsCompleted  int64 `json:"imports_completed"`
	ImportsFailed     int64 `json:"imports_failed"`
}

// StatsService reports corpus-level counters.
type StatsService struct {
	store StatsStore
}

// NewStatsService creates a StatsService.
func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// Collect gathers the current counters.
func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	chunks, err := s.store.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	imports, err := s.store.CountImportsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Chunks:            chunks,
		ImportsProcessing: imports[domain.ImportStatusProcessing],
		ImportsCompleted:  imports[domain.ImportStatusCompleted],
		ImportsFailed:     imports[domain.ImportStatusFailed],
	}, nil
}
