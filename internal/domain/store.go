package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// BetFilter narrows bet queries. A nil SetID matches every set.
type BetFilter struct {
	Since time.Time
	SetID *int64
}

// BetStore persists slip records.
type BetStore interface {
	Insert(ctx context.Context, bet Bet) (int64, error)
	Update(ctx context.Context, bet Bet) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (Bet, error)
	Recent(ctx context.Context, filter BetFilter) ([]Bet, error)
	List(ctx context.Context, opts ListOpts) ([]Bet, error)
	// SettledSince returns the risk-aggregator view of bets with a settled
	// profit uploaded at or after the given time.
	SettledSince(ctx context.Context, since time.Time) ([]BetRecord, error)
	// ListBelowParseVersion returns bets whose stored extraction predates the
	// given parser version, for batch re-parsing.
	ListBelowParseVersion(ctx context.Context, version int, opts ListOpts) ([]Bet, error)
}

// SetStore persists bet sets.
type SetStore interface {
	Create(ctx context.Context, name string) (BetSet, error)
	GetByID(ctx context.Context, id int64) (BetSet, error)
	GetByName(ctx context.Context, name string) (BetSet, error)
	List(ctx context.Context) ([]BetSet, error)
}

// BookmakerStore persists bookmaker lookup rows.
type BookmakerStore interface {
	GetOrCreate(ctx context.Context, name string) (Bookmaker, error)
	List(ctx context.Context) ([]Bookmaker, error)
}

// ImportStore persists CSV import batches.
type ImportStore interface {
	Insert(ctx context.Context, imp CsvImport) (int64, error)
	SetCounts(ctx context.Context, id int64, imported, skipped int) error
	List(ctx context.Context, opts ListOpts) ([]CsvImport, error)
}
