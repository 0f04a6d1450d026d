package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "PlaylistDownloader"

// Client wraps HTTP operations shared by the catalog fetcher, the search
// resolver and the cover-art tagger.
//
// Client provides:
//   - Configured User-Agent header
//   - Optional bearer authorization per request
//   - Optional timeout (zero means none)
//   - Streaming to disk through a temporary ".part" file
//
// Example usage:
//
//	client := NewClient(0)
//
//	// Fetch a search results page
//	html, err := client.GetString(ctx, "https://www.youtube.com/results?search_query=Band+Song")
//
//	// Call an authorized JSON API
//	var page dto.JSONPage
//	err = client.GetJSON(ctx, pageURL, &page, WithBearer(token))
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// A timeout of zero disables the per-request timeout; cancellation is then
// controlled only by the request context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: DefaultUserAgent,
	}
}

// NewClientFrom wraps an existing *http.Client.
//
// Use this to share a transport, for example an httptest server client.
func NewClientFrom(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		httpClient: hc,
		userAgent:  DefaultUserAgent,
	}
}

// HTTPClient returns the underlying *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// IsStatusError reports whether err is (or wraps) a *StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// RequestOption customizes a single request.
type RequestOption func(*http.Request)

// WithBearer sets the "Authorization: Bearer <token>" header.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, stream)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, or a non-positive value when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx (a *StatusError)
//   - Reading the body fails
//
// Example:
//
//	data, err := client.Get(ctx, "https://i.scdn.co/image/ab67616d0000b273")
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content like HTML.
func (c *Client) GetString(ctx context.Context, url string, opts ...RequestOption) (string, error) {
	body, err := c.Get(ctx, url, opts...)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetJSON performs a GET request and decodes the JSON response body into v.
//
// The "Accept: application/json" header is always sent.
func (c *Client) GetJSON(ctx context.Context, url string, v any, opts ...RequestOption) error {
	opts = append([]RequestOption{WithHeader("Accept", "application/json")}, opts...)
	body, err := c.Get(ctx, url, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images. For audio streams,
// use SaveStream to write directly to disk.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// SaveStream copies r to destPath with an optional progress callback.
//
// The content is first written to destPath + ".part" and renamed on
// success. On any failure the partial file is removed, so destPath is
// either complete or absent.
//
// Parameters:
//   - r: Source stream
//   - total: Expected size in bytes, or a non-positive value when unknown
//   - destPath: Final file path
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
func SaveStream(r io.Reader, total int64, destPath string, onProgress func(written, total int64)) (err error) {
	partPath := destPath + ".part"

	file, err := os.Create(partPath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(partPath)
		}
	}()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    total,
			OnUpdate: onProgress,
		}
	}

	if _, err = io.Copy(writer, r); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}

	return os.Rename(partPath, destPath)
}
