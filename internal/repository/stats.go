package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/corpusai/internal/domain"
)

// StatsRepository bundles the corpus-wide counters behind one value.
type StatsRepository struct {
	chunks  *ChunkRepository
	imports *ImportRecordRepository
}

func NewStatsRepository(pool *pgxpool.Pool, dimension int) *StatsRepository {
	return &StatsRepository{
		chunks:  NewChunkRepository(pool, dimension),
		imports: NewImportRecordRepository(pool),
	}
}

func (r *StatsRepository) CountChunks(ctx context.Context) (int64, error) {
	return r.chunks.CountChunks(ctx)
}

func (r *StatsRepository) CountImportsByStatus(ctx context.Context) (map[domain.ImportStatus]int64, error) {
	return r.imports.CountImportsByStatus(ctx)
}
