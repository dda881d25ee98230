package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/library-maintenance/libclient/internal/domain"
)

const (
	changeBucket     = "changes"
	expiryValueBytes = 8
	keyTimeBytes     = 8
)

// boltJournal implements a Journal backed by BoltDB. Keys sort by record time,
// values are an 8-byte expiry followed by the JSON-encoded change.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Journal.
func openBolt(path string, opts Options) (Journal, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(changeBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	j.lastCleanup.Store(j.now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores change with an expiry of now plus the entry TTL.
func (b *boltJournal) Record(change domain.Change) error {
	if b == nil || b.db == nil {
		return nil
	}
	if change.ID == "" {
		return fmt.Errorf("change id is required")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if change.OccurredAt.IsZero() {
		change.OccurredAt = now.UTC()
	}

	raw, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	val := make([]byte, expiryValueBytes+len(raw))
	binary.BigEndian.PutUint64(val, uint64(now.Add(b.entryTTL).Unix()))
	copy(val[expiryValueBytes:], raw)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(changeBucket))
		if bucket == nil {
			return fmt.Errorf("change bucket missing")
		}
		return bucket.Put(entryKey(change.OccurredAt, change.ID), val)
	})
}

// Entries returns unexpired changes, oldest first.
func (b *boltJournal) Entries() ([]domain.Change, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []domain.Change
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(changeBucket))
		if bucket == nil {
			return fmt.Errorf("change bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				return nil
			}
			var c domain.Change
			if err := json.Unmarshal(v[expiryValueBytes:], &c); err != nil {
				return fmt.Errorf("decode change: %w", err)
			}
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

// maybeCleanupExpired removes expired changes on a fixed cadence to avoid unbounded growth.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(changeBucket))
		if bucket == nil {
			return fmt.Errorf("change bucket missing")
		}

		var expired [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func entryKey(at time.Time, id string) []byte {
	key := make([]byte, keyTimeBytes+len(id))
	binary.BigEndian.PutUint64(key, uint64(at.UnixNano()))
	copy(key[keyTimeBytes:], id)
	return key
}

// decodeExpiry decodes the expiry prefix of a stored value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
