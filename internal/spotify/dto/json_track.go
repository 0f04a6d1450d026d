package dto

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/handiism/playlist-downloader/internal/model"
)

// ErrMalformedItem is returned when a playlist item lacks a required field.
var ErrMalformedItem = errors.New("malformed playlist item")

// JSONPage represents one page of the playlist items endpoint.
//
// Items are kept raw so that each one can be decoded independently; a
// single bad item never spoils the rest of the page.
type JSONPage struct {
	Items  []json.RawMessage `json:"items"`
	Total  *int              `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// JSONTrack represents a track object.
//
// Required fields are pointers so that an absent key can be told apart
// from an empty value.
type JSONTrack struct {
	Name       *string       `json:"name"`
	DurationMS int           `json:"duration_ms"`
	Album      *JSONAlbum    `json:"album"`
	Artists    []*JSONArtist `json:"artists"`
}

// JSONAlbum represents the album a track belongs to.
type JSONAlbum struct {
	Name   *string      `json:"name"`
	Images []*JSONImage `json:"images"`
}

// JSONArtist represents a credited artist.
type JSONArtist struct {
	Name *string `json:"name"`
}

// JSONImage represents an image resource. The first image is the largest.
type JSONImage struct {
	URL    *string `json:"url"`
	Height int     `json:"height"`
	Width  int     `json:"width"`
}

// DecodeItem converts one raw playlist item to a model.Track.
//
// Playlist items wrap the track under a "track" key; when that key is
// absent the item itself is treated as the track object.
func DecodeItem(raw json.RawMessage) (*model.Track, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}

	trackJSON := raw
	if nested, ok := fields["track"]; ok {
		trackJSON = nested
	}

	var jt *JSONTrack
	if err := json.Unmarshal(trackJSON, &jt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if jt == nil {
		return nil, fmt.Errorf("%w: null track", ErrMalformedItem)
	}

	return jt.ToTrack()
}

// ToTrack converts JSONTrack to a model.Track.
//
// The track name, album name, first album image URL and first artist name
// are required.
func (jt *JSONTrack) ToTrack() (*model.Track, error) {
	switch {
	case jt.Name == nil:
		return nil, fmt.Errorf("%w: missing name", ErrMalformedItem)
	case jt.Album == nil || jt.Album.Name == nil:
		return nil, fmt.Errorf("%w: missing album name", ErrMalformedItem)
	case len(jt.Album.Images) == 0 || jt.Album.Images[0] == nil || jt.Album.Images[0].URL == nil:
		return nil, fmt.Errorf("%w: missing album image", ErrMalformedItem)
	case len(jt.Artists) == 0 || jt.Artists[0] == nil || jt.Artists[0].Name == nil:
		return nil, fmt.Errorf("%w: missing artist", ErrMalformedItem)
	}

	track := model.NewTrack(*jt.Name, *jt.Artists[0].Name, *jt.Album.Name, *jt.Album.Images[0].URL)
	track.Duration = float64(jt.DurationMS) / 1000
	return track, nil
}
