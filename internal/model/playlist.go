package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Playlist represents the tracks of one download run.
//
// Playlist is used to write a playlist file next to the downloaded audio.
// Tracks are kept in playlist order.
//
// Example:
//
//	pl := NewPlaylist("Road Trip", "/music/road-trip")
//	// pl.Path(PlaylistFormatM3U) = "/music/road-trip/Road Trip.m3u"
type Playlist struct {
	// Name is the playlist name as reported by the catalog.
	Name string

	// Dir is the directory the tracks are downloaded to.
	Dir string

	// Tracks contains the tracks that ended up on disk.
	Tracks []*Track
}

// NewPlaylist creates an empty Playlist.
//
// An empty name falls back to "playlist".
func NewPlaylist(name, dir string) *Playlist {
	if strings.TrimSpace(name) == "" {
		name = "playlist"
	}
	return &Playlist{
		Name: name,
		Dir:  dir,
	}
}

// Path returns the playlist file path for the given format.
//
// The file name is the sanitized playlist name plus the format extension.
// Paths are truncated if they exceed Windows path length limits.
func (p *Playlist) Path(format PlaylistFormat) string {
	fileName := sanitizeFileName(p.Name)
	ext := format.Extension()
	filePath := filepath.Join(p.Dir, fileName+ext)

	// Limit total path length for Windows compatibility
	if len(filePath) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(p.Dir, fileName[:maxLen]+ext)
		}
	}

	return filePath
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a format name ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown names map to PlaylistFormatM3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

var (
	invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpaces   = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidPathChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
