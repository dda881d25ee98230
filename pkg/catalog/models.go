package catalog

import "strings"

// Track is a row returned by the youtube search endpoint.
type Track struct {
	TrackID        int     `json:"track_id"`
	Artist         string  `json:"artist"`
	Album          string  `json:"album"`
	AlbumMBID      string  `json:"album_mbid"`
	Title          string  `json:"title"`
	TrackMBID      string  `json:"track_mbid"`
	YoutubeCode    *string `json:"youtube_code"`
	DownloadStatus string  `json:"download_status"`
	FilePath       *string `json:"file_path"`
}

// ArtistGenres pairs an artist with its sorted genre names.
type ArtistGenres struct {
	ArtistID int      `json:"id"`
	Artist   string   `json:"name"`
	Genres   []string `json:"genres"`
}

// Genre is a single genre row.
type Genre struct {
	GenreID string `json:"id"`
	Name    string `json:"name"`
}

// TrackUpdate sets a track's youtube code and optionally re-queues its download.
type TrackUpdate struct {
	TrackMBID     string `json:"track_mbid"`
	YoutubeCode   string `json:"youtube_code"`
	RetryDownload bool   `json:"retry_download"`
}

// Normalize returns u with its identifiers trimmed, as sent to the server.
func (u TrackUpdate) Normalize() TrackUpdate {
	u.TrackMBID = strings.TrimSpace(u.TrackMBID)
	u.YoutubeCode = strings.TrimSpace(u.YoutubeCode)
	return u
}

// GenreUpdate links or unlinks a genre by name for an artist.
type GenreUpdate struct {
	ArtistID string `json:"artist_id"`
	Genre    string `json:"genre"`
}

// Normalize returns u with its fields trimmed, as sent to the server.
func (u GenreUpdate) Normalize() GenreUpdate {
	u.ArtistID = strings.TrimSpace(u.ArtistID)
	u.Genre = strings.TrimSpace(u.Genre)
	return u
}

// Status is the acknowledgement returned by mutating endpoints.
type Status struct {
	Status string `json:"status"`
}

type artistQuery struct {
	Artist string `json:"artist"`
}
