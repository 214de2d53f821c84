package s3blob

import (
	"context"
	"fmt"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// SlipPrefix is the key prefix under which uploaded slip photos are stored.
const SlipPrefix = "slips/"

// ImportPrefix is the key prefix under which uploaded CSV files are archived.
const ImportPrefix = "imports/"

// Janitor prunes stored slip images past their retention window. Deletion is
// storage-only: the parsed bet rows and their extracted text stay in the
// database, only the source photo goes.
type Janitor struct {
	reader  domain.BlobReader
	deleter domain.BlobDeleter
	maxAge  time.Duration
}

// NewJanitor creates a Janitor that removes objects under SlipPrefix older
// than maxAge.
func NewJanitor(reader domain.BlobReader, deleter domain.BlobDeleter, maxAge time.Duration) *Janitor {
	return &Janitor{reader: reader, deleter: deleter, maxAge: maxAge}
}

// Sweep lists the slip prefix and deletes every object whose LastModified is
// older than the retention window. It returns the number of objects removed.
// A delete failure on one object does not stop the sweep; the first error is
// reported after the pass completes.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	infos, err := j.reader.List(ctx, SlipPrefix)
	if err != nil {
		return 0, fmt.Errorf("s3blob: janitor list: %w", err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	var removed int
	var firstErr error
	for _, info := range infos {
		if info.LastModified.IsZero() || !info.LastModified.Before(cutoff) {
			continue
		}
		if err := j.deleter.Delete(ctx, info.Key); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("s3blob: janitor delete %s: %w", info.Key, err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
