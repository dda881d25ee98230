package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/library-maintenance/libclient/internal/domain"
)

func TestBoltJournalRecordsAndExpiresChanges(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		EntryTTL:        time.Hour,
		CleanupInterval: time.Minute,
	}

	raw, err := openBolt(filepath.Join(dir, "journal.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	j := raw.(*boltJournal)
	defer j.Close()

	clock := time.Now()
	j.now = func() time.Time { return clock }

	first := domain.Change{ID: "c1", Kind: domain.ChangeArtistGenreAdded, Subject: "artist:1", OccurredAt: clock}
	second := domain.Change{ID: "c2", Kind: domain.ChangeTrackRetry, Subject: "track:mbid", OccurredAt: clock.Add(time.Second)}
	if err := j.Record(second); err != nil {
		t.Fatalf("Record second: %v", err)
	}
	if err := j.Record(first); err != nil {
		t.Fatalf("Record first: %v", err)
	}

	entries, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c1" || entries[1].ID != "c2" {
		t.Fatalf("expected chronological entries, got %#v", entries)
	}
	if entries[1].Kind != domain.ChangeTrackRetry {
		t.Fatalf("kind not round-tripped: %q", entries[1].Kind)
	}

	clock = clock.Add(2 * time.Hour)
	entries, err = j.Entries()
	if err != nil {
		t.Fatalf("Entries after expiry: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected expired entries to be hidden, got %d", len(entries))
	}

	var keys int
	if err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(changeBucket)).ForEach(func(_, _ []byte) error {
			keys++
			return nil
		})
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if keys != 0 {
		t.Fatalf("expected cleanup to delete expired keys, %d left", keys)
	}
}

func TestBoltJournalRequiresID(t *testing.T) {
	j, err := openBolt(filepath.Join(t.TempDir(), "j.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer j.Close()

	if err := j.Record(domain.Change{Kind: domain.ChangeTrackRetry}); err == nil {
		t.Fatalf("expected error for change without id")
	}
}

func TestNewJournalTypes(t *testing.T) {
	j, err := NewJournal("none", "", Options{})
	if err != nil {
		t.Fatalf("NewJournal none: %v", err)
	}
	if err := j.Record(domain.Change{ID: "x"}); err != nil {
		t.Fatalf("noop journal Record: %v", err)
	}

	if _, err := NewJournal("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewJournal("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
