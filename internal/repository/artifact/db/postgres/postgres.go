package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-media/internal/domain"
	"storefront-media/internal/repository/artifact"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

// Schema creates the catalog table. Applied once at startup.
const Schema = `
	CREATE TABLE IF NOT EXISTS artifacts (
		filename      TEXT PRIMARY KEY,
		sibling       TEXT NOT NULL DEFAULT '',
		kind          TEXT NOT NULL,
		format        TEXT NOT NULL,
		has_alpha     BOOLEAN NOT NULL,
		original_name TEXT NOT NULL,
		size          BIGINT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)
`

type ArtifactsRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewArtifactsRepository(db *dbpg.DB, retries retry.Strategy) *ArtifactsRepository {
	return &ArtifactsRepository{
		db:      db,
		retries: retries,
	}
}

func (r *ArtifactsRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecWithRetry(ctx, r.retries, Schema); err != nil {
		return fmt.Errorf("failed to create artifacts table: %w", err)
	}
	return nil
}

func (r *ArtifactsRepository) Save(ctx context.Context, rec *domain.ArtifactRecord) error {
	query := `
		INSERT INTO artifacts (
			filename, sibling, kind, format, has_alpha,
			original_name, size, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		rec.Filename,
		rec.Sibling,
		rec.Kind,
		rec.Format,
		rec.HasAlpha,
		rec.OriginalName,
		rec.Size,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact record: %w", err)
	}

	return nil
}

func (r *ArtifactsRepository) GetByFilename(ctx context.Context, filename string) (*domain.ArtifactRecord, error) {
	query := `
		SELECT filename, sibling, kind, format, has_alpha,
		       original_name, size, created_at
		FROM artifacts
		WHERE filename = $1 OR (sibling = $1 AND sibling != '')
		LIMIT 1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact record: %w", err)
	}

	var rec domain.ArtifactRecord
	err = row.Scan(
		&rec.Filename,
		&rec.Sibling,
		&rec.Kind,
		&rec.Format,
		&rec.HasAlpha,
		&rec.OriginalName,
		&rec.Size,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artifact.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifact record: %w", err)
	}

	return &rec, nil
}

func (r *ArtifactsRepository) DeleteByFilename(ctx context.Context, filename string) error {
	query := `DELETE FROM artifacts WHERE filename = $1`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, filename)
	if err != nil {
		return fmt.Errorf("failed to delete artifact record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return artifact.ErrRecordNotFound
	}

	return nil
}
