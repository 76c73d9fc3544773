package testsupport

import (
	"context"
	"testing"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/runs"
)

// MustOpenStore opens a runs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("runs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a run for tests using the provided store.
func NewRun(t testing.TB, store *runs.Store, source, title string) *runs.Run {
	t.Helper()

	run, err := store.Create(context.Background(), source, title)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return run
}
