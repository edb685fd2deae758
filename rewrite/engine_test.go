package rewrite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"remap/mapping"
	"remap/rewrite"
)

var testOrigin = rewrite.Origin{Base: "https://mysite.com", Name: "mysite.com"}

func newTestEngine(store mapping.Store) *rewrite.Engine {
	return rewrite.New(testOrigin, rewrite.Default(), store, zap.NewNop())
}

func TestEngine_CanonicalizeDeterminism(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(mapping.NewMemory())

	first := eng.Canonicalize(ctx, "/wp-content/uploads/a.png")
	if first != "/media/a.png" {
		t.Fatalf("Canonicalize() = %q, want /media/a.png", first)
	}
	for range 10 {
		if got := eng.Canonicalize(ctx, "/wp-content/uploads/a.png"); got != first {
			t.Fatalf("Canonicalize() = %q, want stable %q", got, first)
		}
	}
}

func TestEngine_StoredMappingWins(t *testing.T) {
	// the store is the source of truth for already-seen paths even when the
	// rule set would now compute something else
	ctx := context.Background()
	store := mapping.NewMemory()
	if err := store.Upsert(ctx, "/wp-content/uploads/a.png", "/legacy/a.png"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	eng := newTestEngine(store)
	if got := eng.Canonicalize(ctx, "/wp-content/uploads/a.png"); got != "/legacy/a.png" {
		t.Errorf("Canonicalize() = %q, want stored /legacy/a.png", got)
	}
}

func TestEngine_DeterminismAcrossSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := mapping.OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unable to open store: %v", err)
	}
	first := newTestEngine(store).Canonicalize(ctx, "/wp-content/themes/t/a.css")
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// a later session over the same store must reuse the mapping
	store, err = mapping.OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unable to reopen store: %v", err)
	}
	defer store.Close()

	if got := newTestEngine(store).Canonicalize(ctx, "/wp-content/themes/t/a.css"); got != first {
		t.Errorf("Canonicalize() after restart = %q, want %q", got, first)
	}
}

func TestEngine_ClearCacheResetsScope(t *testing.T) {
	ctx := context.Background()
	store := mapping.NewMemory()
	eng := newTestEngine(store)

	eng.Canonicalize(ctx, "/wp-content/uploads/a.png")
	if err := eng.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after clear = %d, want 0", count)
	}

	// recomputation is legal after a clear and must stay internally
	// consistent for the remainder of the session
	a := eng.Canonicalize(ctx, "/wp-content/uploads/a.png")
	b := eng.Canonicalize(ctx, "/wp-content/uploads/a.png")
	if a != b {
		t.Errorf("Canonicalize() unstable after clear: %q vs %q", a, b)
	}
}

// brokenStore fails every operation to exercise degraded mode.
type brokenStore struct{}

var errStore = errors.New("store gone")

func (brokenStore) Find(context.Context, string) (string, bool, error) { return "", false, errStore }
func (brokenStore) Upsert(context.Context, string, string) error      { return errStore }
func (brokenStore) ClearAll(context.Context) error                    { return errStore }
func (brokenStore) Count(context.Context) (int64, error)              { return 0, errStore }
func (brokenStore) Close() error                                      { return nil }

func TestEngine_StoreFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(brokenStore{})

	if got := eng.Canonicalize(ctx, "/wp-content/uploads/a.png"); got != "/media/a.png" {
		t.Errorf("Canonicalize() with broken store = %q, want rule-based /media/a.png", got)
	}
	if !eng.StoreDegraded() {
		t.Error("StoreDegraded() = false after store failure")
	}
}

func TestEngine_CanonicalizeEmpty(t *testing.T) {
	eng := newTestEngine(mapping.NewMemory())
	if got := eng.Canonicalize(context.Background(), ""); got != "" {
		t.Errorf("Canonicalize(\"\") = %q, want empty", got)
	}
}
