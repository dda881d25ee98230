package sweep

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/library-maintenance/libclient/internal/logger"
	"github.com/library-maintenance/libclient/pkg/catalog"
)

// Options controls a sweep pass.
type Options struct {
	// Status selects tracks by download status, case-insensitively.
	Status string
	// Requeue re-queues every selected track that already has a youtube code.
	Requeue bool
}

// Result is the outcome of a sweep pass.
type Result struct {
	Matched  []catalog.Track `json:"matched"`
	Requeued []string        `json:"requeued"`
	Skipped  []string        `json:"skipped"`
}

// Service sweeps artists for tracks stuck in a download status.
type Service struct {
	source   TrackSource
	requeuer Requeuer
	log      logger.Logger
}

// NewService wires a sweeper. requeuer may be nil when Requeue is never set.
func NewService(source TrackSource, requeuer Requeuer, log logger.Logger) *Service {
	return &Service{source: source, requeuer: requeuer, log: logger.Ensure(log)}
}

// Run sweeps each artist in turn. A failing artist does not stop the pass;
// its error is joined into the returned error alongside the partial result.
// A track returned for several artists is matched and re-queued once.
func (s *Service) Run(ctx context.Context, artists []string, opts Options) (Result, error) {
	var res Result
	if ctx == nil {
		ctx = context.Background()
	}
	if s == nil || s.source == nil {
		return res, fmt.Errorf("sweep service is not initialized")
	}
	status := strings.ToLower(strings.TrimSpace(opts.Status))
	if status == "" {
		return res, fmt.Errorf("sweep status is required")
	}
	if opts.Requeue && s.requeuer == nil {
		return res, fmt.Errorf("requeue requested without a requeuer")
	}

	artists = normalizeArtists(artists)
	if len(artists) == 0 {
		return res, fmt.Errorf("no artists to sweep")
	}

	seen := make(map[string]struct{})
	errs := make([]error, 0, len(artists))
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.runArtist(ctx, artist, status, opts.Requeue, seen, &res); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("artist sweep failed", "sweep_error", map[string]any{
				"artist": artist,
				"error":  err.Error(),
			})
		}
	}

	return res, errors.Join(errs...)
}

func (s *Service) runArtist(ctx context.Context, artist, status string, requeue bool, seen map[string]struct{}, res *Result) error {
	tracks, err := s.source.SearchTracks(ctx, artist)
	if err != nil {
		return fmt.Errorf("search artist %q: %w", artist, err)
	}

	matched := 0
	var errs []error
	for _, t := range tracks {
		if !strings.EqualFold(t.DownloadStatus, status) {
			continue
		}
		key := trackKey(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matched++
		res.Matched = append(res.Matched, t)
		if !requeue {
			continue
		}
		if t.YoutubeCode == nil || strings.TrimSpace(*t.YoutubeCode) == "" {
			res.Skipped = append(res.Skipped, t.TrackMBID)
			continue
		}
		_, err := s.requeuer.RetryTrack(ctx, catalog.TrackUpdate{
			TrackMBID:     t.TrackMBID,
			YoutubeCode:   *t.YoutubeCode,
			RetryDownload: true,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("requeue track %s: %w", t.TrackMBID, err))
			continue
		}
		res.Requeued = append(res.Requeued, t.TrackMBID)
	}

	s.log.InfoObj("artist sweep completed", "sweep_result", map[string]any{
		"artist":  artist,
		"tracks":  len(tracks),
		"matched": matched,
	})
	return errors.Join(errs...)
}

// trackKey identifies a track across searches, falling back to the row id
// when the MusicBrainz id is missing.
func trackKey(t catalog.Track) string {
	if id := strings.TrimSpace(t.TrackMBID); id != "" {
		return "mbid:" + id
	}
	return "id:" + strconv.Itoa(t.TrackID)
}

func normalizeArtists(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
