package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/library-maintenance/libclient/internal/config"
	"github.com/library-maintenance/libclient/internal/domain"
	"github.com/library-maintenance/libclient/internal/logger"
	"github.com/library-maintenance/libclient/internal/storage"
	"github.com/library-maintenance/libclient/pkg/catalog"
	"github.com/library-maintenance/libclient/pkg/httpclient"
	"github.com/library-maintenance/libclient/pkg/publishers"
	"github.com/library-maintenance/libclient/pkg/services"
)

// Library is the client runtime. It owns the service handles, routes track
// calls through the youtube handle and artist/genre calls through the song
// handle, and journals and publishes every successful mutation.
type Library struct {
	services *services.Set
	tracks   *catalog.Client
	genres   *catalog.Client
	journal  storage.Journal
	fanout   *publishers.Fanout
	log      logger.Logger
	now      func() time.Time
}

// ServiceInfo describes one configured handle.
type ServiceInfo struct {
	Name           string            `json:"name"`
	BaseURL        string            `json:"base_url"`
	DefaultHeaders map[string]string `json:"default_headers"`
}

// NewLibrary builds a Library from config: profile defaults, then the
// services file, then per-service URL overrides.
func NewLibrary(ctx context.Context, cfg *config.Config, log logger.Logger) (*Library, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	svcCfgs, err := serviceConfigs(cfg)
	if err != nil {
		return nil, err
	}

	var handleOpts []httpclient.Option
	if logger.S != nil {
		handleOpts = append(handleOpts, httpclient.WithLogger(logger.S))
	}
	set, err := services.Build(svcCfgs, log, handleOpts...)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	log.InfoObj("service handles ready", "services_meta", map[string]any{
		"profile": cfg.ServiceProfile,
		"names":   set.Names(),
	})

	fanout := publishers.NewFanout(nil)
	if cfg.PublishersFile != "" {
		publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			return nil, fmt.Errorf("load publishers registry: %w", err)
		}
		pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), publisherReg.Enabled(), log)
		if err != nil {
			return nil, fmt.Errorf("build publishers: %w", err)
		}
		fanout = publishers.NewFanout(pubs)
		log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
			"count": fanout.Size(),
		})
	}

	journal, err := storage.NewJournal(cfg.JournalType, cfg.JournalPath, storage.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":        cfg.JournalType,
		"path":        cfg.JournalPath,
		"ttl_seconds": int(cfg.JournalTTL.Seconds()),
	})

	lib, err := newLibrary(set, journal, fanout, log)
	if err != nil {
		_ = fanout.Close()
		_ = journal.Close()
		return nil, err
	}
	return lib, nil
}

func newLibrary(set *services.Set, journal storage.Journal, fanout *publishers.Fanout, log logger.Logger) (*Library, error) {
	yt, err := set.YouTube()
	if err != nil {
		return nil, err
	}
	song, err := set.Song()
	if err != nil {
		return nil, err
	}
	if journal == nil {
		journal, _ = storage.NewJournal("none", "", storage.Options{})
	}
	return &Library{
		services: set,
		tracks:   catalog.New(yt),
		genres:   catalog.New(song),
		journal:  journal,
		fanout:   fanout,
		log:      logger.Ensure(log),
		now:      time.Now,
	}, nil
}

func serviceConfigs(cfg *config.Config) ([]services.ServiceConfig, error) {
	base, err := services.Defaults(cfg.ServiceProfile)
	if err != nil {
		return nil, err
	}
	timeout := int(cfg.HTTPTimeout / time.Second)
	for i := range base {
		if timeout > 0 {
			base[i].TimeoutSeconds = timeout
		}
	}

	if cfg.ServicesFile != "" {
		reg, err := services.LoadRegistry(cfg.ServicesFile)
		if err != nil {
			return nil, fmt.Errorf("load services registry: %w", err)
		}
		base = services.Merge(base, reg.All()...)
	}

	var overrides []services.ServiceConfig
	for name, u := range map[string]string{
		services.Album:   cfg.AlbumAPIURL,
		services.Song:    cfg.SongAPIURL,
		services.YouTube: cfg.YouTubeAPIURL,
	} {
		if u != "" {
			overrides = append(overrides, services.ServiceConfig{Name: name, BaseURL: u})
		}
	}
	return services.Merge(base, overrides...), nil
}

// Services lists the configured handles.
func (l *Library) Services() []ServiceInfo {
	names := l.services.Names()
	out := make([]ServiceInfo, 0, len(names))
	for _, name := range names {
		h, err := l.services.Handle(name)
		if err != nil {
			continue
		}
		out = append(out, ServiceInfo{Name: name, BaseURL: h.BaseURL(), DefaultHeaders: h.DefaultHeaders()})
	}
	return out
}

// SearchTracks looks up tracks by artist through the youtube handle.
func (l *Library) SearchTracks(ctx context.Context, artist string) ([]catalog.Track, error) {
	return l.tracks.SearchTracks(ctx, artist)
}

// RetryTrack updates a track's youtube code and optionally re-queues it.
func (l *Library) RetryTrack(ctx context.Context, upd catalog.TrackUpdate) (catalog.Status, error) {
	upd = upd.Normalize()
	st, err := l.tracks.RetryTrack(ctx, upd)
	if err != nil {
		return catalog.Status{}, err
	}
	l.recordChange(ctx, domain.Change{
		Kind:    domain.ChangeTrackRetry,
		Service: services.YouTube,
		Subject: "track:" + upd.TrackMBID,
		Status:  st.Status,
		Payload: map[string]any{
			"youtube_code":   upd.YoutubeCode,
			"retry_download": upd.RetryDownload,
		},
	})
	return st, nil
}

// ArtistGenres lists artists matching name with their genres.
func (l *Library) ArtistGenres(ctx context.Context, name string) ([]catalog.ArtistGenres, error) {
	return l.genres.ArtistGenres(ctx, name)
}

// AllArtistGenres lists every artist with its genres.
func (l *Library) AllArtistGenres(ctx context.Context) ([]catalog.ArtistGenres, error) {
	return l.genres.AllArtistGenres(ctx)
}

// ArtistsWithoutGenre lists artists that have no genre.
func (l *Library) ArtistsWithoutGenre(ctx context.Context) ([]catalog.ArtistGenres, error) {
	return l.genres.ArtistsWithoutGenre(ctx)
}

// Genres lists every genre.
func (l *Library) Genres(ctx context.Context) ([]catalog.Genre, error) {
	return l.genres.Genres(ctx)
}

// AddArtistGenre links a genre to an artist.
func (l *Library) AddArtistGenre(ctx context.Context, upd catalog.GenreUpdate) (catalog.Status, error) {
	upd = upd.Normalize()
	st, err := l.genres.AddArtistGenre(ctx, upd)
	if err != nil {
		return catalog.Status{}, err
	}
	l.recordGenreChange(ctx, domain.ChangeArtistGenreAdded, upd, st)
	return st, nil
}

// RemoveArtistGenre unlinks a genre from an artist.
func (l *Library) RemoveArtistGenre(ctx context.Context, upd catalog.GenreUpdate) (catalog.Status, error) {
	upd = upd.Normalize()
	st, err := l.genres.RemoveArtistGenre(ctx, upd)
	if err != nil {
		return catalog.Status{}, err
	}
	l.recordGenreChange(ctx, domain.ChangeArtistGenreRemoved, upd, st)
	return st, nil
}

// History returns journaled changes, oldest first.
func (l *Library) History() ([]domain.Change, error) {
	return l.journal.Entries()
}

// Close releases publishers and the journal.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	return errors.Join(l.fanout.Close(), l.journal.Close())
}

func (l *Library) recordGenreChange(ctx context.Context, kind domain.ChangeKind, upd catalog.GenreUpdate, st catalog.Status) {
	l.recordChange(ctx, domain.Change{
		Kind:    kind,
		Service: services.Song,
		Subject: "artist:" + upd.ArtistID,
		Status:  st.Status,
		Payload: map[string]any{"genre": upd.Genre},
	})
}

// recordChange journals and publishes a mutation that already succeeded
// server-side, so failures here are logged rather than returned.
func (l *Library) recordChange(ctx context.Context, change domain.Change) {
	change.ID = uuid.NewString()
	change.OccurredAt = l.now().UTC()

	if err := l.journal.Record(change); err != nil {
		l.log.WarnObj("journal record failed", "journal_error", map[string]any{
			"change_id": change.ID,
			"kind":      change.Kind,
			"error":     err.Error(),
		})
	}

	delivered, err := l.fanout.Publish(ctx, publishers.NewEvent(change))
	if err != nil {
		l.log.WarnObj("change publish failed", "publish_error", map[string]any{
			"change_id": change.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	if delivered > 0 {
		l.log.DebugObj("change published", "publish_meta", map[string]any{
			"change_id": change.ID,
			"delivered": delivered,
		})
	}
}
