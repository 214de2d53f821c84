package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// BookmakerStore implements domain.BookmakerStore using PostgreSQL.
type BookmakerStore struct {
	pool *pgxpool.Pool
}

// NewBookmakerStore creates a new BookmakerStore backed by the given pool.
func NewBookmakerStore(pool *pgxpool.Pool) *BookmakerStore {
	return &BookmakerStore{pool: pool}
}

// GetOrCreate returns the bookmaker with the given name, inserting it first
// if it does not exist. Names are stored lowercased so "Betfair" and
// "betfair" resolve to the same row.
func (s *BookmakerStore) GetOrCreate(ctx context.Context, name string) (domain.Bookmaker, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "unknown"
	}

	// The DO UPDATE no-op makes RETURNING yield the row on conflict too.
	var bm domain.Bookmaker
	err := s.pool.QueryRow(ctx, `
		INSERT INTO bookmakers (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`,
		name,
	).Scan(&bm.ID, &bm.Name)
	if err != nil {
		return domain.Bookmaker{}, fmt.Errorf("postgres: get or create bookmaker %q: %w", name, err)
	}
	return bm, nil
}

// List returns every bookmaker ordered by id.
func (s *BookmakerStore) List(ctx context.Context) ([]domain.Bookmaker, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM bookmakers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bookmakers: %w", err)
	}
	defer rows.Close()

	var out []domain.Bookmaker
	for rows.Next() {
		var bm domain.Bookmaker
		if err := rows.Scan(&bm.ID, &bm.Name); err != nil {
			return nil, fmt.Errorf("postgres: scan bookmaker: %w", err)
		}
		out = append(out, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate bookmakers: %w", err)
	}
	return out, nil
}
