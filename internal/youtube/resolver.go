package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	httpc "github.com/handiism/playlist-downloader/internal/http"
	"github.com/handiism/playlist-downloader/internal/model"
)

// DefaultBaseURL is the root of the search and watch pages.
const DefaultBaseURL = "https://www.youtube.com"

var (
	// ErrNoMatch is returned when a search page contains no video link.
	ErrNoMatch = errors.New("no search result")

	// ErrNoSource is returned when a download is attempted without a source.
	ErrNoSource = errors.New("track has no source")

	// ErrNoAudioFormat is returned when a video offers no audio-only stream.
	ErrNoAudioFormat = errors.New("no audio-only format available")
)

// videoLink matches the first watch link on a search results page.
var videoLink = regexp.MustCompile(`watch\?v=(\S{11})`)

// Resolver finds a playable source for a track by scraping the search page.
//
// The first video link in document order wins. There is no ranking, so the
// result is a best guess and may be the wrong recording.
type Resolver struct {
	client *httpc.Client

	// BaseURL is the search site root, without a trailing slash.
	BaseURL string
}

// NewResolver creates a Resolver against DefaultBaseURL.
func NewResolver(client *httpc.Client) *Resolver {
	return &Resolver{
		client:  client,
		BaseURL: DefaultBaseURL,
	}
}

// SearchURL returns the search page URL for a track. Spaces in the
// canonical name become "+".
func (r *Resolver) SearchURL(track *model.Track) string {
	return r.BaseURL + "/results?search_query=" + url.QueryEscape(track.CanonicalName())
}

// WatchURL returns the watch page URL for a video ID.
func (r *Resolver) WatchURL(videoID string) string {
	return r.BaseURL + "/watch?v=" + videoID
}

// Resolve issues one search request and returns the watch URL of the first
// result. It returns ErrNoMatch when the page has no video link.
func (r *Resolver) Resolve(ctx context.Context, track *model.Track) (string, error) {
	body, err := r.client.GetString(ctx, r.SearchURL(track))
	if err != nil {
		return "", fmt.Errorf("search %q: %w", track.CanonicalName(), err)
	}

	id, ok := firstVideoID(body)
	if !ok {
		return "", fmt.Errorf("search %q: %w", track.CanonicalName(), ErrNoMatch)
	}
	return r.WatchURL(id), nil
}

func firstVideoID(page string) (string, bool) {
	// Cheap pre-check before running the regexp on a large page.
	if !strings.Contains(page, "watch?v=") {
		return "", false
	}
	m := videoLink.FindStringSubmatch(page)
	if m == nil {
		return "", false
	}
	return m[1], true
}
