package publishers

import (
	"time"

	"github.com/library-maintenance/libclient/internal/domain"
)

// Event represents the change notification published downstream.
type Event struct {
	ID          string            `json:"id"`
	Kind        domain.ChangeKind `json:"kind"`
	Service     string            `json:"service"`
	Subject     string            `json:"subject"`
	Status      string            `json:"status"`
	Payload     map[string]any    `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
	PublishedAt time.Time         `json:"published_at"`
}

// NewEvent constructs an Event for the given change.
func NewEvent(change domain.Change) Event {
	return Event{
		ID:          change.ID,
		Kind:        change.Kind,
		Service:     change.Service,
		Subject:     change.Subject,
		Status:      change.Status,
		Payload:     change.Payload,
		OccurredAt:  change.OccurredAt,
		PublishedAt: time.Now().UTC(),
	}
}

// attrKind is the message attribute every queue and topic publisher sets.
const attrKind = "kind"
