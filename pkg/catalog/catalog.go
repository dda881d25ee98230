// Package catalog is a typed client for the library maintenance API served
// behind the song and youtube handles.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/library-maintenance/libclient/pkg/httpclient"
)

// ErrInvalidArgument is returned before any request is made when input is unusable.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	PathTrackSearch       = "/youtube/search"
	PathTrackRetry        = "/youtube/retry"
	PathArtistGenres      = "/artistgenres"
	PathArtistGenresAll   = "/artistgenres/all"
	PathArtistsNoGenre    = "/artistgenres/all/nogenre"
	PathArtistGenreRemove = "/artistgenres/deletebyname"
	PathArtistGenreAdd    = "/artistgenres/addbyname"
	PathGenres            = "/genres"
)

// Client calls the maintenance API through a client handle.
type Client struct {
	http httpclient.Client
}

// New wraps an existing handle.
func New(c httpclient.Client) *Client {
	return &Client{http: c}
}

// SearchTracks lists tracks whose artist name contains artist (case-insensitive).
// artist is sent as given, surrounding spaces included. An empty artist matches every track.
func (c *Client) SearchTracks(ctx context.Context, artist string) ([]Track, error) {
	var out []Track
	if err := c.post(ctx, PathTrackSearch, artistQuery{Artist: artist}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Track{}
	}
	return out, nil
}

// RetryTrack stores a youtube code for a track and, if requested, re-queues its download.
func (c *Client) RetryTrack(ctx context.Context, upd TrackUpdate) (Status, error) {
	upd = upd.Normalize()
	if upd.TrackMBID == "" {
		return Status{}, fmt.Errorf("%w: track mbid is required", ErrInvalidArgument)
	}

	var st Status
	if err := c.post(ctx, PathTrackRetry, upd, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// ArtistGenres lists artists whose name contains artist, with their genres.
// artist is sent as given.
func (c *Client) ArtistGenres(ctx context.Context, artist string) ([]ArtistGenres, error) {
	return c.artistGenres(ctx, PathArtistGenres, artistQuery{Artist: artist})
}

// AllArtistGenres lists every artist with its genres.
func (c *Client) AllArtistGenres(ctx context.Context) ([]ArtistGenres, error) {
	return c.artistGenres(ctx, PathArtistGenresAll, nil)
}

// ArtistsWithoutGenre lists artists that have no genre assigned.
func (c *Client) ArtistsWithoutGenre(ctx context.Context) ([]ArtistGenres, error) {
	return c.artistGenres(ctx, PathArtistsNoGenre, nil)
}

// AddArtistGenre links genre to the artist, creating the genre if needed.
func (c *Client) AddArtistGenre(ctx context.Context, upd GenreUpdate) (Status, error) {
	return c.genreUpdate(ctx, PathArtistGenreAdd, upd)
}

// RemoveArtistGenre unlinks genre from the artist.
func (c *Client) RemoveArtistGenre(ctx context.Context, upd GenreUpdate) (Status, error) {
	return c.genreUpdate(ctx, PathArtistGenreRemove, upd)
}

// Genres lists every known genre.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out []Genre
	if err := c.post(ctx, PathGenres, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Genre{}
	}
	return out, nil
}

func (c *Client) artistGenres(ctx context.Context, path string, body any) ([]ArtistGenres, error) {
	var out []ArtistGenres
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ArtistGenres{}
	}
	for i := range out {
		if out[i].Genres == nil {
			out[i].Genres = []string{}
		}
	}
	return out, nil
}

func (c *Client) genreUpdate(ctx context.Context, path string, upd GenreUpdate) (Status, error) {
	upd = upd.Normalize()
	if upd.ArtistID == "" {
		return Status{}, fmt.Errorf("%w: artist id is required", ErrInvalidArgument)
	}
	if upd.Genre == "" {
		return Status{}, fmt.Errorf("%w: genre is required", ErrInvalidArgument)
	}

	var st Status
	if err := c.post(ctx, path, upd, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c == nil || c.http == nil {
		return errors.New("catalog client is not initialized")
	}
	if err := c.http.Post(ctx, path, body, out); err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	return nil
}
