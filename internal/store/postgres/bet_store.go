package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// BetStore implements domain.BetStore using PostgreSQL.
type BetStore struct {
	pool *pgxpool.Pool
}

// NewBetStore creates a new BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

const betSelectCols = `id, set_id, bookmaker_id, uploaded_at, image_key,
	event_text, bet_type, odds, stake, potential_return, cashout_amount,
	commission_rate, result_status, profit, raw_extract, multi_bet_detail,
	parse_version, edited_at`

func scanBet(row pgx.Row) (domain.Bet, error) {
	var b domain.Bet
	var setID, bookmakerID *int64
	err := row.Scan(
		&b.ID, &setID, &bookmakerID, &b.UploadedAt, &b.ImageKey,
		&b.EventText, &b.BetType, &b.Odds, &b.Stake, &b.PotentialReturn,
		&b.CashoutAmount, &b.CommissionRate, &b.ResultStatus, &b.Profit,
		&b.RawExtract, &b.MultiBetDetail, &b.ParseVersion, &b.EditedAt,
	)
	if err != nil {
		return domain.Bet{}, err
	}
	if setID != nil {
		b.SetID = *setID
	}
	if bookmakerID != nil {
		b.BookmakerID = *bookmakerID
	}
	return b, nil
}

func scanBetRows(rows pgx.Rows) ([]domain.Bet, error) {
	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// nullID converts the zero id sentinel to SQL NULL for nullable FK columns.
func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// Insert stores a new bet and returns its assigned id.
func (s *BetStore) Insert(ctx context.Context, bet domain.Bet) (int64, error) {
	const query = `
		INSERT INTO bets (
			set_id, bookmaker_id, uploaded_at, image_key,
			event_text, bet_type, odds, stake, potential_return,
			cashout_amount, commission_rate, result_status, profit,
			raw_extract, multi_bet_detail, parse_version
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16
		) RETURNING id`

	uploadedAt := bet.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	var id int64
	err := s.pool.QueryRow(ctx, query,
		nullID(bet.SetID), nullID(bet.BookmakerID), uploadedAt, bet.ImageKey,
		bet.EventText, bet.BetType, bet.Odds, bet.Stake, bet.PotentialReturn,
		bet.CashoutAmount, bet.CommissionRate, bet.ResultStatus, bet.Profit,
		bet.RawExtract, bet.MultiBetDetail, bet.ParseVersion,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert bet: %w", err)
	}
	return id, nil
}

// Update overwrites an existing bet's mutable fields and stamps edited_at.
func (s *BetStore) Update(ctx context.Context, bet domain.Bet) error {
	const query = `
		UPDATE bets SET
			set_id = $2, bookmaker_id = $3, image_key = $4,
			event_text = $5, bet_type = $6, odds = $7, stake = $8,
			potential_return = $9, cashout_amount = $10, commission_rate = $11,
			result_status = $12, profit = $13, raw_extract = $14,
			multi_bet_detail = $15, parse_version = $16, edited_at = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		bet.ID, nullID(bet.SetID), nullID(bet.BookmakerID), bet.ImageKey,
		bet.EventText, bet.BetType, bet.Odds, bet.Stake,
		bet.PotentialReturn, bet.CashoutAmount, bet.CommissionRate,
		bet.ResultStatus, bet.Profit, bet.RawExtract,
		bet.MultiBetDetail, bet.ParseVersion,
	)
	if err != nil {
		return fmt.Errorf("postgres: update bet %d: %w", bet.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a bet by id.
func (s *BetStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete bet %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a single bet.
func (s *BetStore) GetByID(ctx context.Context, id int64) (domain.Bet, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+betSelectCols+` FROM bets WHERE id = $1`, id)
	b, err := scanBet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("postgres: get bet %d: %w", id, err)
	}
	return b, nil
}

// Recent returns bets uploaded at or after filter.Since, newest first,
// optionally narrowed to one set.
func (s *BetStore) Recent(ctx context.Context, filter domain.BetFilter) ([]domain.Bet, error) {
	query := `SELECT ` + betSelectCols + ` FROM bets WHERE uploaded_at >= $1`
	args := []any{filter.Since}

	if filter.SetID != nil {
		query += ` AND set_id = $2`
		args = append(args, *filter.SetID)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent bets: %w", err)
	}
	defer rows.Close()

	bets, err := scanBetRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent bets: %w", err)
	}
	return bets, nil
}

// List returns bets newest first with pagination.
func (s *BetStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Bet, error) {
	query := `SELECT ` + betSelectCols + ` FROM bets ORDER BY uploaded_at DESC`
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
		return nil, fmt.Errorf("postgres: list bets: %w", err)
	}
	defer rows.Close()

	bets, err := scanBetRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan bets: %w", err)
	}
	return bets, nil
}

// SettledSince returns the slim risk-aggregation view of bets uploaded at or
// after the given time. Pending and undetected statuses are excluded because
// their profit is not realized yet.
func (s *BetStore) SettledSince(ctx context.Context, since time.Time) ([]domain.BetRecord, error) {
	const query = `
		SELECT uploaded_at, profit, stake,
			COALESCE(set_id, 0), COALESCE(bookmaker_id, 0)
		FROM bets
		WHERE uploaded_at >= $1
		  AND result_status NOT IN ('pending', '')
		ORDER BY uploaded_at ASC`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settled bets: %w", err)
	}
	defer rows.Close()

	var records []domain.BetRecord
	for rows.Next() {
		var r domain.BetRecord
		if err := rows.Scan(&r.UploadedAt, &r.Profit, &r.Stake, &r.SetID, &r.BookmakerID); err != nil {
			return nil, fmt.Errorf("postgres: scan settled bet: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate settled bets: %w", err)
	}
	return records, nil
}

// ListBelowParseVersion returns bets whose stored extraction predates the
// given parser version, oldest first, for batch re-parsing.
func (s *BetStore) ListBelowParseVersion(ctx context.Context, version int, opts domain.ListOpts) ([]domain.Bet, error) {
	query := `SELECT ` + betSelectCols + ` FROM bets
		WHERE parse_version < $1 AND event_text <> ''
		ORDER BY id ASC`
	args := []any{version}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list bets below parse version: %w", err)
	}
	defer rows.Close()

	bets, err := scanBetRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan bets below parse version: %w", err)
	}
	return bets, nil
}
