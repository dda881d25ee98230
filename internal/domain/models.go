package domain

import "time"

// Domain contains the change records shared by the journal and publishers.

// ChangeKind names a mutation issued against a backend service.
type ChangeKind string

const (
	ChangeTrackRetry         ChangeKind = "track.retry"
	ChangeArtistGenreAdded   ChangeKind = "artist.genre.added"
	ChangeArtistGenreRemoved ChangeKind = "artist.genre.removed"
)

// Change describes a successful mutation.
type Change struct {
	ID         string         `json:"id"`
	Kind       ChangeKind     `json:"kind"`
	Service    string         `json:"service"`
	Subject    string         `json:"subject"`
	Status     string         `json:"status"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
