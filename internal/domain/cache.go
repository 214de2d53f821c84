package domain

import (
	"context"
	"time"
)

// RiskCache stores computed risk summaries keyed by lookback window so that
// dashboard polling does not recompute over the full bet history each time.
type RiskCache interface {
	Get(ctx context.Context, hours int) (RiskSummary, error)
	Set(ctx context.Context, hours int, summary RiskSummary) error
	// Invalidate drops every cached window; called when a bet is written.
	Invalidate(ctx context.Context) error
}

// SignalBus provides pub/sub messaging between the services and the
// websocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter bounds request rates per key. Allow counts a request against
// the key's window; Wait blocks until a slot opens or the context ends.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locks for work that must not run on two
// instances at once, such as batch reparsing.
type LockManager interface {
	// Acquire obtains the lock or returns ErrLockHeld. The returned function
	// releases the lock and is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Well-known signal bus channels.
const (
	ChannelBetSettled     = "bets:settled"
	ChannelImportFinished = "imports:finished"
)
