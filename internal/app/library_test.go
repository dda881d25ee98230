package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/library-maintenance/libclient/internal/config"
	"github.com/library-maintenance/libclient/internal/domain"
	"github.com/library-maintenance/libclient/pkg/catalog"
	"github.com/library-maintenance/libclient/pkg/publishers"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"updated"}`))
	}
	mux.HandleFunc(catalog.PathTrackRetry, ok)
	mux.HandleFunc(catalog.PathArtistGenreAdd, ok)
	mux.HandleFunc(catalog.PathArtistGenreRemove, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	})
	mux.HandleFunc(catalog.PathGenres, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","name":"rock"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type hookRecorder struct {
	mu     sync.Mutex
	events []publishers.Event
	status int
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var evt publishers.Event
	_ = json.NewDecoder(r.Body).Decode(&evt)
	h.mu.Lock()
	h.events = append(h.events, evt)
	status := h.status
	h.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func writePublishersFile(t *testing.T, dir, url string) string {
	t.Helper()
	path := filepath.Join(dir, "publishers.yaml")
	raw := fmt.Sprintf("publishers:\n  - id: hook\n    type: http\n    http:\n      url: %s/changes\n", url)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}
	return path
}

func testConfig(t *testing.T, apiURL, publishersFile string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServiceProfile:         "zelda",
		PublishersFile:         publishersFile,
		SongAPIURL:             apiURL,
		YouTubeAPIURL:          apiURL,
		HTTPTimeout:            2 * time.Second,
		JournalType:            "bbolt",
		JournalPath:            filepath.Join(dir, "journal.db"),
		JournalTTL:             time.Hour,
		JournalCleanupInterval: time.Hour,
	}
}

func TestLibraryMutationsAreJournaledAndPublished(t *testing.T) {
	api := newAPIServer(t)
	hook := &hookRecorder{}
	hookSrv := httptest.NewServer(hook)
	defer hookSrv.Close()

	cfg := testConfig(t, api.URL, writePublishersFile(t, t.TempDir(), hookSrv.URL))
	lib, err := NewLibrary(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	defer lib.Close()

	ctx := context.Background()
	if _, err := lib.RetryTrack(ctx, catalog.TrackUpdate{TrackMBID: " mbid-1 ", YoutubeCode: " abc", RetryDownload: true}); err != nil {
		t.Fatalf("RetryTrack: %v", err)
	}
	if _, err := lib.AddArtistGenre(ctx, catalog.GenreUpdate{ArtistID: "9 ", Genre: " glam"}); err != nil {
		t.Fatalf("AddArtistGenre: %v", err)
	}

	history, err := lib.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(history))
	}
	if history[0].Kind != domain.ChangeTrackRetry || history[0].Subject != "track:mbid-1" {
		t.Fatalf("unexpected first entry %#v", history[0])
	}
	if history[0].Payload["youtube_code"] != "abc" {
		t.Fatalf("journaled youtube code = %#v", history[0].Payload["youtube_code"])
	}
	if history[1].Kind != domain.ChangeArtistGenreAdded || history[1].Service != "song" ||
		history[1].Subject != "artist:9" || history[1].Payload["genre"] != "glam" {
		t.Fatalf("unexpected second entry %#v", history[1])
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()
	if len(hook.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(hook.events))
	}
	if hook.events[0].ID != history[0].ID {
		t.Fatalf("event id %q does not match journal id %q", hook.events[0].ID, history[0].ID)
	}
}

func TestLibraryFailedMutationIsNotRecorded(t *testing.T) {
	api := newAPIServer(t)
	lib, err := NewLibrary(context.Background(), testConfig(t, api.URL, ""), nil)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	defer lib.Close()

	if _, err := lib.RemoveArtistGenre(context.Background(), catalog.GenreUpdate{ArtistID: "9", Genre: "glam"}); err == nil {
		t.Fatalf("expected server error")
	}
	history, err := lib.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed mutation was journaled: %#v", history)
	}
}

func TestLibraryPublishFailureDoesNotFailMutation(t *testing.T) {
	api := newAPIServer(t)
	hook := &hookRecorder{status: http.StatusServiceUnavailable}
	hookSrv := httptest.NewServer(hook)
	defer hookSrv.Close()

	cfg := testConfig(t, api.URL, writePublishersFile(t, t.TempDir(), hookSrv.URL))
	lib, err := NewLibrary(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	defer lib.Close()

	st, err := lib.AddArtistGenre(context.Background(), catalog.GenreUpdate{ArtistID: "1", Genre: "rock"})
	if err != nil {
		t.Fatalf("AddArtistGenre: %v", err)
	}
	if st.Status != "updated" {
		t.Fatalf("status = %q", st.Status)
	}
}

func TestLibraryServicesReflectProfileAndOverrides(t *testing.T) {
	cfg := &config.Config{
		ServiceProfile: "local",
		SongAPIURL:     "http://zelda:5002",
		HTTPTimeout:    time.Second,
		JournalType:    "none",
	}
	lib, err := NewLibrary(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	defer lib.Close()

	want := map[string]string{
		"album":   "http://zelda:5000",
		"song":    "http://zelda:5002",
		"youtube": "http://localhost:8080",
	}
	infos := lib.Services()
	if len(infos) != len(want) {
		t.Fatalf("expected %d services, got %#v", len(want), infos)
	}
	for _, info := range infos {
		if info.BaseURL != want[info.Name] {
			t.Fatalf("%s base url = %q, want %q", info.Name, info.BaseURL, want[info.Name])
		}
		if info.DefaultHeaders["Content-Type"] != "application/json" {
			t.Fatalf("%s headers = %#v", info.Name, info.DefaultHeaders)
		}
	}
}

func TestNewLibraryUnknownProfile(t *testing.T) {
	cfg := &config.Config{ServiceProfile: "staging", JournalType: "none"}
	if _, err := NewLibrary(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}
