package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	s3blob "github.com/alanyoungcy/slipscan/internal/blob/s3"
	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/profit"
)

// multipartThreshold is the CSV size above which the upload archive goes
// through the multipart writer.
const multipartThreshold = 5 * 1024 * 1024

// ImportService ingests historical bets from CSV exports.
type ImportService struct {
	bets    domain.BetStore
	sets    domain.SetStore
	imports domain.ImportStore
	blobs   *s3blob.Writer
	calc    *profit.Calculator
	bus     domain.SignalBus
	cache   domain.RiskCache
	logger  *slog.Logger
}

// NewImportService creates an ImportService with all required dependencies.
func NewImportService(
	bets domain.BetStore,
	sets domain.SetStore,
	imports domain.ImportStore,
	blobs *s3blob.Writer,
	calc *profit.Calculator,
	bus domain.SignalBus,
	cache domain.RiskCache,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		bets:    bets,
		sets:    sets,
		imports: imports,
		blobs:   blobs,
		calc:    calc,
		bus:     bus,
		cache:   cache,
		logger:  logger.With(slog.String("component", "import_service")),
	}
}

// RowError reports one rejected CSV line. Line numbers are 1-based and count
// the header.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarises one CSV batch.
type ImportResult struct {
	ImportID int        `json:"import_id,omitempty"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	DryRun   bool       `json:"dry_run"`
	Errors   []RowError `json:"errors,omitempty"`
}

// importRow is one accepted CSV line. Result is empty unless the export
// carries a result column.
type importRow struct {
	SetName string
	Stake   float64
	Odds    *float64
	Profit  float64
	Result  domain.ResultStatus
}

// ImportCSV parses and optionally persists a CSV of historical bets. Two
// header layouts are accepted:
//
//	set,profit                    (legacy export)
//	stake,odds,profit[,set]       (current export)
//
// Bad rows are skipped with a per-line error; they never abort the batch.
// With dryRun set, nothing is written anywhere and only the counts and row
// errors come back.
func (s *ImportService) ImportCSV(ctx context.Context, filename string, data []byte, dryRun bool) (ImportResult, error) {
	rows, rowErrs, err := parseCSV(data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import_service: parse csv: %w", err)
	}

	result := ImportResult{
		Imported: len(rows),
		Skipped:  len(rowErrs),
		DryRun:   dryRun,
		Errors:   rowErrs,
	}
	if dryRun {
		return result, nil
	}

	objectKey, err := s.archive(ctx, filename, data)
	if err != nil {
		return ImportResult{}, err
	}

	importID, err := s.imports.Insert(ctx, domain.CsvImport{
		UploadedAt: time.Now().UTC(),
		Filename:   filename,
		ObjectKey:  objectKey,
		SizeBytes:  int64(len(data)),
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import_service: record import: %w", err)
	}
	result.ImportID = int(importID)

	imported := 0
	for i, row := range rows {
		bet, err := s.buildBet(ctx, row)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: i + 2, Message: err.Error()})
			continue
		}
		if _, err := s.bets.Insert(ctx, bet); err != nil {
			result.Errors = append(result.Errors, RowError{Line: i + 2, Message: err.Error()})
			continue
		}
		imported++
	}
	result.Imported = imported
	result.Skipped = len(result.Errors)

	if err := s.imports.SetCounts(ctx, importID, result.Imported, result.Skipped); err != nil {
		s.logger.WarnContext(ctx, "import counts update failed",
			slog.Int64("import_id", importID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "risk cache invalidate failed",
			slog.String("error", err.Error()),
		)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":     "import_finished",
		"import_id": importID,
		"imported":  result.Imported,
		"skipped":   result.Skipped,
	})
	if err := s.bus.Publish(ctx, domain.ChannelImportFinished, evt); err != nil {
		s.logger.WarnContext(ctx, "publish import event failed",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "csv imported",
		slog.Int64("import_id", importID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// archive stores the raw CSV in object storage for audit.
func (s *ImportService) archive(ctx context.Context, filename string, data []byte) (string, error) {
	key := s3blob.ImportPrefix + uuid.NewString() + "-" + sanitizeFilename(filename)
	if len(data) > multipartThreshold {
		if err := s.blobs.PutMultipart(ctx, key, bytes.NewReader(data), int64(len(data)/4)); err != nil {
			return "", fmt.Errorf("import_service: archive csv: %w", err)
		}
		return key, nil
	}
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), "text/csv"); err != nil {
		return "", fmt.Errorf("import_service: archive csv: %w", err)
	}
	return key, nil
}

// buildBet converts an accepted row into a manual bet record. The result
// status follows the sign of the imported profit.
func (s *ImportService) buildBet(ctx context.Context, row importRow) (domain.Bet, error) {
	setName := row.SetName
	if setName == "" {
		setName = "default"
	}
	set, err := s.sets.GetByName(ctx, setName)
	if errors.Is(err, domain.ErrNotFound) {
		set, err = s.sets.Create(ctx, setName)
		if errors.Is(err, domain.ErrAlreadyExists) {
			set, err = s.sets.GetByName(ctx, setName)
		}
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("set %q: %w", setName, err)
	}

	// An explicit result column wins over the profit sign; with odds on the
	// row the profit is recomputed from the formulas rather than trusted.
	status := row.Result
	netProfit := row.Profit
	if status == "" {
		status = domain.ResultBreakEven
		switch {
		case row.Profit > 0:
			status = domain.ResultWon
		case row.Profit < 0:
			status = domain.ResultLost
		}
	} else if row.Odds != nil {
		netProfit = s.calc.Profit("", domain.SideBack, row.Odds, row.Stake, status, nil, nil)
	}

	return domain.Bet{
		SetID:        set.ID,
		UploadedAt:   time.Now().UTC(),
		BetType:      "manual",
		Odds:         row.Odds,
		Stake:        row.Stake,
		ResultStatus: status,
		Profit:       netProfit,
		ParseVersion: ParseVersion,
	}, nil
}

// parseCSV reads the header, detects the schema, and converts each line. A
// malformed header is a hard error; malformed lines are soft row errors.
func parseCSV(data []byte) ([]importRow, []RowError, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	profitIdx, hasProfit := cols["profit"]
	if !hasProfit {
		return nil, nil, fmt.Errorf("header %v: profit column is required", header)
	}
	stakeIdx, hasStake := cols["stake"]
	oddsIdx, hasOdds := cols["odds"]
	setIdx, hasSet := cols["set"]
	resultIdx, hasResult := cols["result"]

	// Legacy exports carry only set and profit.
	legacy := !hasStake && hasSet

	var rows []importRow
	var rowErrs []RowError
	line := 1
	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Message: err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}

		row := importRow{}
		profit, err := fieldFloat(record, profitIdx)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "profit: " + err.Error()})
			continue
		}
		row.Profit = profit

		if hasSet {
			if setIdx < len(record) {
				row.SetName = strings.TrimSpace(record[setIdx])
			}
		}
		if legacy {
			rows = append(rows, row)
			continue
		}

		if !hasStake {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "stake column is required"})
			continue
		}
		stake, err := fieldFloat(record, stakeIdx)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Message: "stake: " + err.Error()})
			continue
		}
		row.Stake = stake

		if hasOdds && oddsIdx < len(record) && strings.TrimSpace(record[oddsIdx]) != "" {
			odds, err := fieldFloat(record, oddsIdx)
			if err != nil {
				rowErrs = append(rowErrs, RowError{Line: line, Message: "odds: " + err.Error()})
				continue
			}
			row.Odds = &odds
		}

		if hasResult && resultIdx < len(record) && strings.TrimSpace(record[resultIdx]) != "" {
			status, err := parseResult(record[resultIdx])
			if err != nil {
				rowErrs = append(rowErrs, RowError{Line: line, Message: "result: " + err.Error()})
				continue
			}
			row.Result = status
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

// parseResult maps the export's result words onto result statuses.
func parseResult(v string) (domain.ResultStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "won", "win":
		return domain.ResultWon, nil
	case "lost", "loss":
		return domain.ResultLost, nil
	case "push", "void", "break_even", "breakeven":
		return domain.ResultBreakEven, nil
	default:
		return "", fmt.Errorf("unknown result %q", v)
	}
}

func fieldFloat(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("column %d missing", idx+1)
	}
	v := strings.TrimSpace(strings.ReplaceAll(record[idx], ",", ""))
	v = strings.TrimPrefix(v, "$")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", record[idx])
	}
	return f, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// sanitizeFilename strips path separators so the archive key stays flat.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "import.csv"
	}
	return name
}
