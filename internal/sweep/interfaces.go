package sweep

import (
	"context"

	"github.com/library-maintenance/libclient/pkg/catalog"
)

// TrackSource finds tracks for an artist.
type TrackSource interface {
	SearchTracks(ctx context.Context, artist string) ([]catalog.Track, error)
}

// Requeuer re-queues a track download.
type Requeuer interface {
	RetryTrack(ctx context.Context, upd catalog.TrackUpdate) (catalog.Status, error)
}
