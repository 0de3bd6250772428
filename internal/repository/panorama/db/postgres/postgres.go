package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/repository/panorama"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type PanoramasRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewPanoramasRepository(db *dbpg.DB, retries retry.Strategy) *PanoramasRepository {
	return &PanoramasRepository{
		db:      db,
		retries: retries,
	}
}

func (r *PanoramasRepository) Save(ctx context.Context, record *domain.PanoramaRecord) error {
	query := `
		INSERT INTO panoramas (
			id, original_filename, original_size, source_kind, status,
			error, warnings, high_url, medium_url, low_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	// TEXT[] keeps the warning list lossless regardless of its content.
	warnings := record.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		record.ID,
		record.OriginalFilename,
		record.OriginalSize,
		record.SourceKind,
		record.Status,
		record.Error,
		pq.Array(warnings),
		record.HighURL,
		record.MediumURL,
		record.LowURL,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save panorama record: %w", err)
	}

	return nil
}

func (r *PanoramasRepository) GetByID(ctx context.Context, id string) (*domain.PanoramaRecord, error) {
	query := `
		SELECT id, original_filename, original_size, source_kind, status,
		       error, warnings, high_url, medium_url, low_url, created_at
		FROM panoramas
		WHERE id = $1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query panorama: %w", err)
	}

	record, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, panorama.ErrPanoramaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan panorama: %w", err)
	}

	return record, nil
}

func (r *PanoramasRepository) List(ctx context.Context, limit, offset int) ([]domain.PanoramaRecord, error) {
	query := `
		SELECT id, original_filename, original_size, source_kind, status,
		       error, warnings, high_url, medium_url, low_url, created_at
		FROM panoramas
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query panoramas: %w", err)
	}
	defer rows.Close()

	var records []domain.PanoramaRecord
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan panorama: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating panoramas: %w", err)
	}

	return records, nil
}

func scanRecord(scan func(dest ...any) error) (*domain.PanoramaRecord, error) {
	var record domain.PanoramaRecord
	var warnings pq.StringArray

	err := scan(
		&record.ID,
		&record.OriginalFilename,
		&record.OriginalSize,
		&record.SourceKind,
		&record.Status,
		&record.Error,
		&warnings,
		&record.HighURL,
		&record.MediumURL,
		&record.LowURL,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(warnings) > 0 {
		record.Warnings = []string(warnings)
	}

	return &record, nil
}
