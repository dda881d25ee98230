package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/library-maintenance/libclient/internal/domain"
	"github.com/library-maintenance/libclient/pkg/catalog"
)

func setupEnv(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(catalog.PathTrackSearch, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_, _ = w.Write([]byte(`[{"track_id":7,"artist":"Bowie","title":"Heroes","track_mbid":"m-7","youtube_code":null,"download_status":"failed"}]`))
	})
	mux.HandleFunc(catalog.PathTrackRetry, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	})
	mux.HandleFunc(catalog.PathGenres, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","name":"rock"},{"id":"2","name":"glam"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("SONG_API_URL", srv.URL)
	t.Setenv("YOUTUBE_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("JOURNAL_TYPE", "bbolt")
	t.Setenv("JOURNAL_PATH", filepath.Join(t.TempDir(), "journal.db"))
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), args, &out)
	return out.String(), err
}

func TestTracksSearchJSON(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "tracks", "search", "Bowie", "-o", "json")
	if err != nil {
		t.Fatalf("tracks search: %v", err)
	}
	var tracks []catalog.Track
	if err := json.Unmarshal([]byte(out), &tracks); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Heroes" || tracks[0].YoutubeCode != nil {
		t.Fatalf("unexpected tracks %#v", tracks)
	}
}

func TestServicesTableUsesProfile(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "services", "--profile", "legacy")
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	for _, want := range []string{"NAME", "http://zelda:5000", "Content-Type: application/json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRetryThenHistory(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "tracks", "retry", "--mbid", "m-7", "--code", "abc", "--queue"); err != nil {
		t.Fatalf("tracks retry: %v", err)
	}
	out, err := run(t, "history", "-o", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var changes []domain.Change
	if err := json.Unmarshal([]byte(out), &changes); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(changes) != 1 || changes[0].Kind != domain.ChangeTrackRetry || changes[0].Status != "queued" {
		t.Fatalf("unexpected history %#v", changes)
	}
}

func TestTracksSweepRequeues(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "tracks", "sweep", "Bowie", "--requeue", "-o", "json")
	if err != nil {
		t.Fatalf("tracks sweep: %v", err)
	}
	var res struct {
		Matched []catalog.Track `json:"matched"`
		Skipped []string        `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(res.Matched) != 1 || len(res.Skipped) != 1 || res.Skipped[0] != "m-7" {
		t.Fatalf("unexpected sweep result %#v", res)
	}
}

func TestGenresTable(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "genres")
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if !strings.Contains(out, "glam") || !strings.HasPrefix(out, "ID") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)
	cases := [][]string{
		{"genres", "-o", "xml"},
		{"artists", "genres"},
		{"artists", "genres", "--all", "--no-genre"},
		{"artists", "add-genre", "--genre", "rock"},
		{"services", "--profile", "staging"},
	}
	for _, args := range cases {
		if _, err := run(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
