package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// ImportStore implements domain.ImportStore using PostgreSQL.
type ImportStore struct {
	pool *pgxpool.Pool
}

// NewImportStore creates a new ImportStore backed by the given pool.
func NewImportStore(pool *pgxpool.Pool) *ImportStore {
	return &ImportStore{pool: pool}
}

// Insert records a new CSV import batch and returns its id.
func (s *ImportStore) Insert(ctx context.Context, imp domain.CsvImport) (int64, error) {
	uploadedAt := imp.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO csv_imports (uploaded_at, filename, object_key, size_bytes, imported, skipped)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		uploadedAt, imp.Filename, imp.ObjectKey, imp.SizeBytes, imp.Imported, imp.Skipped,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert csv import: %w", err)
	}
	return id, nil
}

// SetCounts updates the imported/skipped tallies after processing finishes.
func (s *ImportStore) SetCounts(ctx context.Context, id int64, imported, skipped int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE csv_imports SET imported = $2, skipped = $3 WHERE id = $1`,
		id, imported, skipped,
	)
	if err != nil {
		return fmt.Errorf("postgres: update csv import %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns import batches newest first with pagination.
func (s *ImportStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.CsvImport, error) {
	query := `SELECT id, uploaded_at, filename, object_key, size_bytes, imported, skipped
		FROM csv_imports ORDER BY uploaded_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list csv imports: %w", err)
	}
	defer rows.Close()

	var imports []domain.CsvImport
	for rows.Next() {
		var imp domain.CsvImport
		if err := rows.Scan(&imp.ID, &imp.UploadedAt, &imp.Filename,
			&imp.ObjectKey, &imp.SizeBytes, &imp.Imported, &imp.Skipped); err != nil {
			return nil, fmt.Errorf("postgres: scan csv import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate csv imports: %w", err)
	}
	return imports, nil
}
