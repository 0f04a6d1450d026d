package download

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/playlist-downloader/internal/audio"
	"github.com/handiism/playlist-downloader/internal/config"
	"github.com/handiism/playlist-downloader/internal/http"
	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/model"
	"github.com/handiism/playlist-downloader/internal/spotify"
	"github.com/handiism/playlist-downloader/internal/youtube"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// TrackSource yields the tracks of a playlist.
type TrackSource interface {
	Tracks(ctx context.Context, playlistID string) iter.Seq2[*model.Track, error]
	PlaylistName(ctx context.Context, playlistID string) (string, error)
}

// Resolver finds a playable source URL for a track.
type Resolver interface {
	Resolve(ctx context.Context, track *model.Track) (string, error)
}

// Downloader writes the audio of a source URL to a file.
type Downloader interface {
	Download(ctx context.Context, sourceURL, destPath string, onProgress func(written, total int64)) error
}

// Tagger writes metadata into a downloaded file.
type Tagger interface {
	Tag(ctx context.Context, track *model.Track, path string) error
}

// PlaylistWriter saves a playlist file for a finished run.
type PlaylistWriter interface {
	Write(ctx context.Context, playlist *model.Playlist) (string, error)
}

// components groups the collaborators of a Manager.
type components struct {
	source     TrackSource
	resolver   Resolver
	downloader Downloader
	tagger     Tagger
	playlist   PlaylistWriter
}

type indexedResult struct {
	index  int
	result Result
}

// Manager coordinates the download of one playlist.
//
// Every track runs through its own unit of work:
//
//	resolve -> exists? -> download -> tag
//
// A failing track never affects the others.
type Manager struct {
	settings *config.Settings
	components

	results []indexedResult

	receivedBytes  atomic.Int64
	queuedTracks   atomic.Int32
	finishedTracks atomic.Int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager authorized with the given
// catalog bearer token.
//
// onProgress may be called from several goroutines at once.
func NewManager(settings *config.Settings, token string, onProgress func(ProgressEvent)) *Manager {
	client := http.NewClient(settings.RequestTimeout())

	fetcher := spotify.NewFetcher(client, token, nil)
	if settings.Spotify.APIBaseURL != "" {
		fetcher.BaseURL = settings.Spotify.APIBaseURL
	}
	fetcher.Limit = settings.TrackLimit
	fetcher.Lenient = settings.LenientDecoding

	resolver := youtube.NewResolver(client)
	if settings.YouTube.BaseURL != "" {
		resolver.BaseURL = settings.YouTube.BaseURL
	}

	return newManager(settings, components{
		source:     fetcher,
		resolver:   resolver,
		downloader: youtube.NewDownloader(client.HTTPClient()),
		tagger:     audio.NewTagger(client, settings.ToTagConfig()),
		playlist:   audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended),
	}, onProgress)
}

func newManager(settings *config.Settings, c components, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:   settings,
		components: c,
		onProgress: onProgress,
	}
}

// Run downloads every track of the playlist into settings.DownloadsPath.
//
// A unit is started for each track as soon as the fetcher yields it, so
// downloads overlap with pagination. Run returns once every unit has
// finished. Per-track failures are reported in the Summary, not as an
// error; the error is non-nil only when the destination cannot be created
// or the fetcher stopped with a decode error (strict mode).
func (m *Manager) Run(ctx context.Context, playlistID string) (*Summary, error) {
	if err := ioutils.EnsureDir(m.settings.DownloadsPath); err != nil {
		return nil, fmt.Errorf("create %s: %w", m.settings.DownloadsPath, err)
	}

	m.mu.Lock()
	m.results = nil
	m.mu.Unlock()
	m.receivedBytes.Store(0)
	m.queuedTracks.Store(0)
	m.finishedTracks.Store(0)

	var g errgroup.Group
	if limit := m.settings.MaxConcurrentTracksDownload; limit > 0 {
		g.SetLimit(limit)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching playlist %s", playlistID), Level: LevelInfo})

	var fetchErr error
	index := 0
	for track, err := range m.source.Tracks(ctx, playlistID) {
		if err != nil {
			fetchErr = fmt.Errorf("playlist %s: %w", playlistID, err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Stopped reading playlist: %v", err), Level: LevelError})
			break
		}

		i := index
		index++
		m.queuedTracks.Add(1)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Queued: %s", track.CanonicalName()), Level: LevelVerbose})

		g.Go(func() error {
			result := m.ProcessTrack(ctx, track)
			m.record(i, result)
			return nil // Continue with other tracks
		})
	}

	_ = g.Wait()

	summary := newSummary(playlistID, m.orderedResults())

	if m.settings.CreatePlaylist && m.playlist != nil {
		m.writePlaylist(ctx, summary)
	}

	if summary.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished playlist %s: %d downloaded, %d skipped", playlistID, summary.Done, summary.Skipped), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished playlist %s, %d of %d tracks failed", playlistID, summary.Failed, summary.Queued), Level: LevelWarning})
	}

	return summary, fetchErr
}

// ProcessTrack runs one track through resolve, download and tag.
//
// The existence check happens after resolution. A download error does not
// stop the unit: tagging is attempted anyway and reports the missing file,
// and the download error is attached to the result.
func (m *Manager) ProcessTrack(ctx context.Context, track *model.Track) Result {
	defer m.finishedTracks.Add(1)

	name := track.CanonicalName()

	if !track.HasSource() {
		source, err := m.resolver.Resolve(ctx, track)
		switch {
		case errors.Is(err, youtube.ErrNoMatch):
			m.progress(ProgressEvent{Message: fmt.Sprintf("No source found for %s", name), Level: LevelWarning})
		case err != nil:
			return m.fail(track, err)
		default:
			track.SetSourceURL(source)
		}
	}

	path := m.TrackPath(track)
	if ioutils.FileExists(path) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: Already Downloaded", name), Level: LevelInfo})
		return Result{Track: track, Status: StatusSkipped}
	}

	downloadErr := m.downloader.Download(ctx, track.SourceURL, path, m.byteCounter())
	if downloadErr != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Download of %s failed: %v", name, downloadErr), Level: LevelVerbose})
	}

	if err := m.tagger.Tag(ctx, track, path); err != nil {
		if downloadErr != nil {
			err = fmt.Errorf("tag: %w; download: %w", err, downloadErr)
		}
		return m.fail(track, err)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", name), Level: LevelSuccess})
	return Result{Track: track, Status: StatusDone}
}

// TrackPath returns the destination file of a track.
func (m *Manager) TrackPath(track *model.Track) string {
	return filepath.Join(m.settings.DownloadsPath, track.FileName())
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, tracksFinished, tracksQueued int32) {
	return m.receivedBytes.Load(), m.finishedTracks.Load(), m.queuedTracks.Load()
}

func (m *Manager) fail(track *model.Track, err error) Result {
	if rmErr := ioutils.RemoveIfExists(m.TrackPath(track)); rmErr != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error removing %s: %v", track.FileName(), rmErr), Level: LevelWarning})
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.CanonicalName(), err), Level: LevelError})
	return Result{Track: track, Status: StatusFailed, Err: err}
}

// byteCounter returns a progress callback that adds each download's
// increments to the shared byte counter.
func (m *Manager) byteCounter() func(written, total int64) {
	var last int64
	return func(written, total int64) {
		m.receivedBytes.Add(written - last)
		last = written
	}
}

func (m *Manager) record(index int, result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, indexedResult{index: index, result: result})
}

func (m *Manager) orderedResults() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.Slice(m.results, func(i, j int) bool { return m.results[i].index < m.results[j].index })

	results := make([]Result, len(m.results))
	for i, r := range m.results {
		results[i] = r.result
	}
	return results
}

func (m *Manager) writePlaylist(ctx context.Context, summary *Summary) {
	name, err := m.source.PlaylistName(ctx, summary.PlaylistID)
	if err != nil || name == "" {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Could not read playlist name, using %s", summary.PlaylistID), Level: LevelVerbose})
		name = summary.PlaylistID
	}

	playlist := model.NewPlaylist(name, m.settings.DownloadsPath)
	playlist.Tracks = summary.Completed()

	path, err := m.playlist.Write(ctx, playlist)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	summary.PlaylistPath = path
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
