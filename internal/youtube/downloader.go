package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	httpc "github.com/handiism/playlist-downloader/internal/http"
)

// PreferredMimeType is the container preferred when picking an audio stream.
const PreferredMimeType = "audio/mp4"

// StreamClient is the part of the stream provider client used by Downloader.
type StreamClient interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

// Downloader fetches the audio stream of a watch URL to disk.
//
// Example:
//
//	d := youtube.NewDownloader(httpClient.HTTPClient())
//	err := d.Download(ctx, track.SourceURL, "/music/Band Song.m4a", nil)
type Downloader struct {
	client StreamClient
}

// NewDownloader creates a Downloader backed by the youtube client.
// A nil hc uses the library's default HTTP client.
func NewDownloader(hc *http.Client) *Downloader {
	c := &yt.Client{}
	if hc != nil {
		c.HTTPClient = hc
	}
	return &Downloader{client: c}
}

// NewDownloaderWithClient creates a Downloader over any StreamClient.
func NewDownloaderWithClient(client StreamClient) *Downloader {
	return &Downloader{client: client}
}

// Download streams the best audio-only format of sourceURL to destPath.
//
// The data is written to destPath + ".part" first and renamed when the
// stream completes; a failed download leaves neither file behind. The
// destination is overwritten if it exists.
func (d *Downloader) Download(ctx context.Context, sourceURL, destPath string, onProgress func(written, total int64)) error {
	if sourceURL == "" {
		return ErrNoSource
	}

	video, err := d.client.GetVideoContext(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("fetch video %s: %w", sourceURL, err)
	}

	format, err := selectAudioFormat(video.Formats)
	if err != nil {
		return fmt.Errorf("video %s: %w", video.ID, err)
	}

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("start stream %s: %w", video.ID, err)
	}
	defer stream.Close()

	if err := httpc.SaveStream(stream, size, destPath, onProgress); err != nil {
		return fmt.Errorf("download %s: %w", video.ID, err)
	}
	return nil
}

// selectAudioFormat keeps audio-only formats and prefers audio/mp4 at the
// highest bitrate, falling back to the best audio-only format of any type.
func selectAudioFormat(formats yt.FormatList) (*yt.Format, error) {
	var best, bestAny *yt.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Width != 0 || f.Height != 0 {
			continue
		}
		if bestAny == nil || bitrateForFormat(f) > bitrateForFormat(bestAny) {
			bestAny = f
		}
		if !strings.HasPrefix(f.MimeType, PreferredMimeType) {
			continue
		}
		if best == nil || bitrateForFormat(f) > bitrateForFormat(best) {
			best = f
		}
	}

	switch {
	case best != nil:
		return best, nil
	case bestAny != nil:
		return bestAny, nil
	default:
		return nil, ErrNoAudioFormat
	}
}

func bitrateForFormat(f *yt.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}
