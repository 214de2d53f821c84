package s3blob

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

type fakeStore struct {
	objects []domain.BlobInfo
	deleted []string
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	return f.objects, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestJanitorSweep(t *testing.T) {
	now := time.Now()
	store := &fakeStore{objects: []domain.BlobInfo{
		{Key: "slips/old.png", LastModified: now.Add(-48 * time.Hour)},
		{Key: "slips/fresh.png", LastModified: now.Add(-1 * time.Hour)},
		{Key: "slips/unknown-age.png"},
	}}

	j := NewJanitor(store, store, 24*time.Hour)
	removed, err := j.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "slips/old.png" {
		t.Errorf("deleted = %v, want only slips/old.png", store.deleted)
	}
}
