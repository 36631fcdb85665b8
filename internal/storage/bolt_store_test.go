package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStoreMarksAndExpiresKeys(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "nested", "ledger.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }

	seen, err := store.Seen("k1")
	if err != nil || seen {
		t.Fatalf("expected unseen key, seen=%v err=%v", seen, err)
	}

	if err := store.Mark("k1"); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	seen, err = store.Seen("k1")
	if err != nil || !seen {
		t.Fatalf("expected key marked as seen, got seen=%v err=%v", seen, err)
	}

	now = now.Add(2 * time.Minute)
	seen, err = store.Seen("k1")
	if err != nil {
		t.Fatalf("Seen after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire")
	}
	if n, _ := store.count(); n != 0 {
		t.Fatalf("expired key should be deleted on lookup, %d left", n)
	}
}

func TestBoltStoreCleanupRemovesExpiredKeys(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "ledger.db"), Options{
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	for _, k := range []string{"a", "b", "c"} {
		if err := store.Mark(k); err != nil {
			t.Fatalf("Mark %s: %v", k, err)
		}
	}

	now = now.Add(90 * time.Second)
	if err := store.Mark("fresh"); err != nil {
		t.Fatalf("Mark fresh: %v", err)
	}

	n, err := store.count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the fresh key after cleanup, got %d keys", n)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	opts := Options{TTL: time.Hour, CleanupInterval: time.Hour}

	store, err := NewStore("bbolt", path, opts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Mark("k"); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = NewStore("bbolt", path, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	seen, err := store.Seen("k")
	if err != nil || !seen {
		t.Fatalf("expected key to survive reopen, seen=%v err=%v", seen, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Mark("x"); err != nil {
		t.Fatalf("noop store Mark: %v", err)
	}
	if seen, _ := store.Seen("x"); seen {
		t.Fatalf("noop store never reports keys as seen")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
