package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// SetStore implements domain.SetStore using PostgreSQL.
type SetStore struct {
	pool *pgxpool.Pool
}

// NewSetStore creates a new SetStore backed by the given connection pool.
func NewSetStore(pool *pgxpool.Pool) *SetStore {
	return &SetStore{pool: pool}
}

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// Create inserts a new named set.
func (s *SetStore) Create(ctx context.Context, name string) (domain.BetSet, error) {
	var set domain.BetSet
	err := s.pool.QueryRow(ctx,
		`INSERT INTO bet_sets (name) VALUES ($1) RETURNING id, name, is_active`,
		name,
	).Scan(&set.ID, &set.Name, &set.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.BetSet{}, domain.ErrAlreadyExists
		}
		return domain.BetSet{}, fmt.Errorf("postgres: create set %q: %w", name, err)
	}
	return set, nil
}

// GetByID fetches a set by id.
func (s *SetStore) GetByID(ctx context.Context, id int64) (domain.BetSet, error) {
	var set domain.BetSet
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, is_active FROM bet_sets WHERE id = $1`, id,
	).Scan(&set.ID, &set.Name, &set.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BetSet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BetSet{}, fmt.Errorf("postgres: get set %d: %w", id, err)
	}
	return set, nil
}

// GetByName fetches a set by its unique name.
func (s *SetStore) GetByName(ctx context.Context, name string) (domain.BetSet, error) {
	var set domain.BetSet
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, is_active FROM bet_sets WHERE name = $1`, name,
	).Scan(&set.ID, &set.Name, &set.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BetSet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BetSet{}, fmt.Errorf("postgres: get set %q: %w", name, err)
	}
	return set, nil
}

// List returns every set ordered by id.
func (s *SetStore) List(ctx context.Context) ([]domain.BetSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, is_active FROM bet_sets ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sets: %w", err)
	}
	defer rows.Close()

	var sets []domain.BetSet
	for rows.Next() {
		var set domain.BetSet
		if err := rows.Scan(&set.ID, &set.Name, &set.IsActive); err != nil {
			return nil, fmt.Errorf("postgres: scan set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate sets: %w", err)
	}
	return sets, nil
}
