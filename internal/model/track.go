package model

import (
	"regexp"
	"sync"
)

// AudioExtension is the extension of every downloaded audio file.
const AudioExtension = ".m4a"

// invalidNameChars matches characters that are unsafe in file names or URLs.
var invalidNameChars = regexp.MustCompile("[#<%>&*{?}/\\\\$+!`'|\"=@.\\[\\]:]")

// Track represents a single playlist entry.
//
// Track contains the metadata needed to find, download and tag one song:
//   - Title, Artist and Album for the MP4 tags
//   - CoverArtURL for the embedded cover picture
//   - SourceURL, the resolved watch URL (empty until resolution succeeds)
//   - Duration for playlist generation
//
// Title and Artist must not be modified after NewTrack: the canonical name
// is computed from them once and cached for the lifetime of the Track.
//
// A Track is owned by exactly one download unit at a time and must be
// passed by pointer.
type Track struct {
	// Title is the track title.
	Title string

	// Artist is the name of the first credited artist.
	Artist string

	// Album is the album title.
	Album string

	// CoverArtURL is the URL of the album cover image.
	CoverArtURL string

	// SourceURL is the playable source the audio is downloaded from.
	// Use SetSourceURL to fill it in.
	SourceURL string

	// Duration is the track length in seconds.
	Duration float64

	nameOnce sync.Once
	name     string
}

// NewTrack creates a new Track.
func NewTrack(title, artist, album, coverArtURL string) *Track {
	return &Track{
		Title:       title,
		Artist:      artist,
		Album:       album,
		CoverArtURL: coverArtURL,
	}
}

// CanonicalName returns "{artist} {title}" with every character that is
// unsafe in file names or URLs removed. Spaces are kept.
//
// The value is computed on first use and cached.
//
// Example:
//
//	NewTrack("What's Up?", "4 Non Blondes", "", "").CanonicalName() // "4 Non Blondes Whats Up"
func (t *Track) CanonicalName() string {
	t.nameOnce.Do(func() {
		t.name = canonicalName(t.Artist, t.Title)
	})
	return t.name
}

// FileName returns the name of the audio file for this track.
func (t *Track) FileName() string {
	return t.CanonicalName() + AudioExtension
}

// HasSource reports whether the track has been resolved to a source.
func (t *Track) HasSource() bool {
	return t.SourceURL != ""
}

// SetSourceURL records the resolved source. The first non-empty value wins;
// later calls and empty values are ignored.
func (t *Track) SetSourceURL(url string) {
	if url == "" || t.SourceURL != "" {
		return
	}
	t.SourceURL = url
}

// HasCoverArt reports whether the track has a cover image to embed.
func (t *Track) HasCoverArt() bool {
	return t.CoverArtURL != ""
}

func canonicalName(artist, title string) string {
	return invalidNameChars.ReplaceAllString(artist+" "+title, "")
}
