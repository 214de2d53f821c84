// Package domain defines the core value objects and the store, cache, and
// blob interfaces of the slipscan backend. Entities here are plain data;
// behavior lives in the slip, profit, and risk packages and in the service
// layer.
package domain

import (
	"encoding/json"
	"time"
)

// ResultStatus is the settlement state extracted from a slip or assigned by
// the parser. The empty string means "not detected".
type ResultStatus string

const (
	ResultWon       ResultStatus = "won"
	ResultLost      ResultStatus = "lost"
	ResultVoid      ResultStatus = "void"
	ResultCashout   ResultStatus = "cashout"
	ResultPending   ResultStatus = "pending"
	ResultBreakEven ResultStatus = "break_even"
	ResultUnknown   ResultStatus = "unknown"
)

// IsCashout reports whether the status denotes an early cash-out. OCR output
// varies between "cashout", "cash_out", and "cashout ..." phrasings, so only
// the prefix is significant.
func (s ResultStatus) IsCashout() bool {
	str := string(s)
	return len(str) >= 4 && (str[:4] == "cash")
}

// Side indicates which side of a wager was taken. Lay bets only exist on
// exchange-style bookmakers.
type Side string

const (
	SideBack Side = "back"
	SideLay  Side = "lay"
)

// Bet is a persisted betting-slip record. Nullable numeric fields use
// pointers; nil means the value was never detected, which is distinct from
// zero.
type Bet struct {
	ID          int64     `json:"id"`
	SetID       int64     `json:"set_id"`
	BookmakerID int64     `json:"bookmaker_id"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ImageKey    string    `json:"image_key"` // object-storage key of the slip photo

	EventText       string       `json:"event_text"` // raw OCR text, truncated for storage
	BetType         string       `json:"bet_type"`   // "back", "lay", "multi", "manual"
	Odds            *float64     `json:"odds"`
	Stake           float64      `json:"stake"`
	PotentialReturn *float64     `json:"potential_return,omitempty"`
	CashoutAmount   *float64     `json:"cashout_amount,omitempty"`
	CommissionRate  *float64     `json:"commission_rate,omitempty"` // fraction, not percent
	ResultStatus    ResultStatus `json:"result_status"`
	Profit          float64      `json:"profit"`

	RawExtract     json.RawMessage `json:"raw_extract,omitempty"`      // ExtractedFields snapshot at parse time
	MultiBetDetail json.RawMessage `json:"multi_bet_detail,omitempty"` // MultiBetSummary when more than one bet was found
	ParseVersion   int             `json:"parse_version"`

	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// BetSet is a named grouping of bets (a betting strategy or account pool).
type BetSet struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Bookmaker is a lookup row for the book a slip came from.
type Bookmaker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CsvImport records one CSV batch upload and its outcome.
type CsvImport struct {
	ID         int64     `json:"id"`
	UploadedAt time.Time `json:"uploaded_at"`
	Filename   string    `json:"filename"`
	ObjectKey  string    `json:"object_key"`
	SizeBytes  int64     `json:"size_bytes"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
}
