package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/library-maintenance/libclient/internal/domain"
)

// Package storage keeps a local journal of mutations issued by the client.

// Journal records successful changes and lists the ones still retained.
type Journal interface {
	Close() error
	Record(change domain.Change) error
	Entries() ([]domain.Change, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewJournal creates the configured journal backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                      { return nil }
func (noopJournal) Record(domain.Change) error        { return nil }
func (noopJournal) Entries() ([]domain.Change, error) { return nil, nil }
