package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/pagination"
)

const importRecordColumns = `id, filename, file_type, file_size, file_path, status, error_message, chunks_count, created_at, completed_at`

// ImportRecordRepository persists per-document import status.
type ImportRecordRepository struct {
	db dbtx
}

func NewImportRecordRepository(pool *pgxpool.Pool) *ImportRecordRepository {
	return &ImportRecordRepository{db: pool}
}

func NewImportRecordRepositoryWithTx(tx pgx.Tx) *ImportRecordRepository {
	return &ImportRecordRepository{db: tx}
}

// Create inserts a record and fills in its generated id and created_at.
func (r *ImportRecordRepository) Create(ctx context.Context, record *domain.ImportRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO import_records
			(filename, file_type, file_size, file_path, status, error_message, chunks_count, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		record.Filename, record.FileType, record.FileSize, record.FilePath,
		record.Status, record.ErrorMessage, record.ChunksCount, record.CreatedAt, record.CompletedAt,
	).Scan(&record.ID)
	if err != nil {
		return domain.NewStorageFailure(err)
	}
	return nil
}

// Update rewrites a record's mutable fields.
func (r *ImportRecordRepository) Update(ctx context.Context, record *domain.ImportRecord) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE import_records
		 SET file_path = $1, status = $2, error_message = $3, chunks_count = $4, completed_at = $5
		 WHERE id = $6`,
		record.FilePath, record.Status, record.ErrorMessage, record.ChunksCount, record.CompletedAt, record.ID,
	)
	if err != nil {
		return domain.NewStorageFailure(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrImportRecordNotFound
	}
	return nil
}

func (r *ImportRecordRepository) GetByID(ctx context.Context, id int64) (*domain.ImportRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+importRecordColumns+` FROM import_records WHERE id = $1`, id)
	record, err := scanImportRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrImportRecordNotFound
		}
		return nil, domain.NewStorageFailure(err)
	}
	return record, nil
}

// List returns records newest first with keyset pagination on
// (created_at, id).
func (r *ImportRecordRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+importRecordColumns+`
			 FROM import_records
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+importRecordColumns+`
			 FROM import_records
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	defer rows.Close()

	var results []*domain.ImportRecord
	for rows.Next() {
		record, scanErr := scanImportRecord(rows)
		if scanErr != nil {
			return nil, domain.NewStorageFailure(scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	return results, nil
}

// CountImportsByStatus returns how many records sit in each status.
func (r *ImportRecordRepository) CountImportsByStatus(ctx context.Context) (map[domain.ImportStatus]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM import_records GROUP BY status`)
	if err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	defer rows.Close()

	counts := make(map[domain.ImportStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.NewStorageFailure(err)
		}
		counts[domain.ImportStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageFailure(err)
	}
	return counts, nil
}

func scanImportRecord(row pgx.Row) (*domain.ImportRecord, error) {
	var rec domain.ImportRecord
	var fileType string
	if err := row.Scan(&rec.ID, &rec.Filename, &fileType, &rec.FileSize, &rec.FilePath,
		&rec.Status, &rec.ErrorMessage, &rec.ChunksCount, &rec.CreatedAt, &rec.CompletedAt); err != nil {
		return nil, err
	}
	rec.FileType = domain.SourceType(fileType)
	return &rec, nil
}
