package spotify

import (
	"net/url"
	"strings"
)

// ParsePlaylistID extracts the playlist ID from user input.
//
// Accepted forms:
//
//	37i9dQZF1DXcBWIGoYBM5M
//	spotify:playlist:37i9dQZF1DXcBWIGoYBM5M
//	https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc
//
// Anything else is returned trimmed and unchanged.
func ParsePlaylistID(input string) string {
	input = strings.TrimSpace(input)

	if rest, ok := strings.CutPrefix(input, "spotify:playlist:"); ok {
		return rest
	}

	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return input
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "playlist" && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	return input
}
