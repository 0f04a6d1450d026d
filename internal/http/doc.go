// Package http provides the HTTP client shared by the playlist fetcher,
// the search resolver and the cover-art tagger.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Per-request options such as bearer authorization
//   - Non-2xx responses as *StatusError values
//   - An optional timeout (none by default)
//
// # Basic Usage
//
//	client := http.NewClient(0)
//
//	// Fetch a page
//	html, err := client.GetString(ctx, "https://www.youtube.com/results?search_query=Band+Song")
//
//	// Authorized JSON request
//	err = client.GetJSON(ctx, url, &page, http.WithBearer(token))
//
// # Streaming to disk
//
// SaveStream writes a reader to a ".part" file and renames it into place
// only when the copy succeeds:
//
//	err := http.SaveStream(stream, size, "/music/Band Song.m4a", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
package http
