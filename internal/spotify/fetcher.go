package spotify

import (
	"context"
	"fmt"
	"iter"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	httpc "github.com/handiism/playlist-downloader/internal/http"
	"github.com/handiism/playlist-downloader/internal/model"
	"github.com/handiism/playlist-downloader/internal/spotify/dto"
)

const (
	// DefaultBaseURL is the catalog API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultLimit caps the number of tracks read from one playlist.
	DefaultLimit = 10000

	// PageSize is the number of items requested per page.
	PageSize = 50
)

// ErrMalformedItem is returned in strict mode when an item cannot be decoded.
var ErrMalformedItem = dto.ErrMalformedItem

// Fetcher reads playlist entries from the catalog API.
//
// Example:
//
//	f := spotify.NewFetcher(client, token, logger)
//	for track, err := range f.Tracks(ctx, playlistID) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(track.CanonicalName())
//	}
type Fetcher struct {
	client *httpc.Client
	token  string
	logger *log.Logger

	// BaseURL is the catalog API root, without a trailing slash.
	BaseURL string

	// Limit caps the number of tracks yielded by Tracks. Zero or less
	// means DefaultLimit.
	Limit int

	// Lenient skips malformed items. When false the sequence yields the
	// decode error once and ends.
	Lenient bool
}

// NewFetcher creates a Fetcher authorized with the given bearer token.
// A nil logger falls back to log.Default().
func NewFetcher(client *httpc.Client, token string, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		client:  client,
		token:   token,
		logger:  logger,
		BaseURL: DefaultBaseURL,
		Limit:   DefaultLimit,
		Lenient: true,
	}
}

// Tracks returns a lazy sequence of the playlist's tracks.
//
// Pages are requested only as the consumer pulls. Pagination ends quietly
// when a page fails (non-2xx or transport error), when a page has no items,
// when the last page has been read, or when Limit tracks have been yielded.
// Every call starts a fresh pass from offset 0.
func (f *Fetcher) Tracks(ctx context.Context, playlistID string) iter.Seq2[*model.Track, error] {
	return func(yield func(*model.Track, error) bool) {
		limit := f.Limit
		if limit <= 0 {
			limit = DefaultLimit
		}

		yielded := 0
		for offset := 0; yielded < limit; offset += PageSize {
			page, err := f.fetchPage(ctx, playlistID, offset)
			if err != nil {
				f.logger.Warn("stopping playlist pagination", "playlist", playlistID, "offset", offset, "err", err)
				return
			}
			if len(page.Items) == 0 {
				return
			}

			tracks, decodeErr := f.decodePage(page, offset)
			for _, track := range tracks {
				if yielded >= limit {
					return
				}
				yielded++
				if !yield(track, nil) {
					return
				}
			}
			if decodeErr != nil {
				yield(nil, decodeErr)
				return
			}

			if len(page.Items) < PageSize {
				return
			}
			if page.Total != nil && offset+PageSize >= *page.Total {
				return
			}
		}
	}
}

// PlaylistName returns the display name of a playlist.
func (f *Fetcher) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	endpoint := fmt.Sprintf("%s/playlists/%s?fields=name", f.BaseURL, url.PathEscape(playlistID))

	body, err := f.client.Get(ctx, endpoint, httpc.WithBearer(f.token), httpc.WithHeader("Accept", "application/json"))
	if err != nil {
		return "", fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("fetch playlist %s: invalid json", playlistID)
	}
	return gjson.GetBytes(body, "name").String(), nil
}

// decodePage converts every item of a page. In strict mode decoding stops at
// the first malformed item and its error is returned with the tracks before it.
func (f *Fetcher) decodePage(page *dto.JSONPage, offset int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0, len(page.Items))
	for i, raw := range page.Items {
		track, err := dto.DecodeItem(raw)
		if err != nil {
			if !f.Lenient {
				return tracks, fmt.Errorf("item %d: %w", offset+i, err)
			}
			f.logger.Debug("skipping playlist item", "offset", offset+i, "err", err)
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, playlistID string, offset int) (*dto.JSONPage, error) {
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks?offset=%d&limit=%d",
		f.BaseURL, url.PathEscape(playlistID), offset, PageSize)

	var page dto.JSONPage
	if err := f.client.GetJSON(ctx, endpoint, &page, httpc.WithBearer(f.token)); err != nil {
		return nil, err
	}
	return &page, nil
}
