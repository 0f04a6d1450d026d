package download

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/playlist-downloader/internal/config"
	"github.com/handiism/playlist-downloader/internal/model"
	"github.com/handiism/playlist-downloader/internal/youtube"
)

type fakeSource struct {
	tracks []*model.Track
	err    error // yielded after the tracks when set
	name   string
}

func (f *fakeSource) Tracks(ctx context.Context, playlistID string) iter.Seq2[*model.Track, error] {
	return func(yield func(*model.Track, error) bool) {
		for _, t := range f.tracks {
			if !yield(t, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func (f *fakeSource) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	if f.name == "" {
		return "", errors.New("not found")
	}
	return f.name, nil
}

type fakeResolver struct {
	calls atomic.Int32
	// errs maps canonical names to resolve errors.
	errs map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, track *model.Track) (string, error) {
	f.calls.Add(1)
	if err, ok := f.errs[track.CanonicalName()]; ok {
		return "", err
	}
	return "https://www.youtube.com/watch?v=" + strings.Repeat("a", 11), nil
}

type fakeDownloader struct {
	calls atomic.Int32
	// fail lists canonical names whose download fails.
	fail map[string]bool
	// partial leaves a file behind on failure.
	partial bool
	delay   time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeDownloader) Download(ctx context.Context, sourceURL, destPath string, onProgress func(written, total int64)) error {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		old := f.maxActive.Load()
		if n <= old || f.maxActive.CompareAndSwap(old, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if sourceURL == "" {
		return youtube.ErrNoSource
	}
	name := strings.TrimSuffix(filepath.Base(destPath), model.AudioExtension)
	if f.fail[name] {
		if f.partial {
			os.WriteFile(destPath, []byte("partial"), 0644)
		}
		return errors.New("stream interrupted")
	}
	if onProgress != nil {
		onProgress(5, 5)
	}
	return os.WriteFile(destPath, []byte("audio"), 0644)
}

type fakeTagger struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeTagger) Tag(ctx context.Context, track *model.Track, path string) error {
	f.calls.Add(1)
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if f.fail[track.CanonicalName()] {
		return errors.New("invalid container")
	}
	return nil
}

type fakePlaylist struct {
	written *model.Playlist
}

func (f *fakePlaylist) Write(ctx context.Context, playlist *model.Playlist) (string, error) {
	f.written = playlist
	return filepath.Join(playlist.Dir, playlist.Name+".m3u"), nil
}

type harness struct {
	manager    *Manager
	source     *fakeSource
	resolver   *fakeResolver
	downloader *fakeDownloader
	tagger     *fakeTagger
	playlist   *fakePlaylist
	dir        string

	mu     sync.Mutex
	events []ProgressEvent
}

func newHarness(t *testing.T, tracks ...*model.Track) *harness {
	t.Helper()
	h := &harness{
		source:     &fakeSource{tracks: tracks},
		resolver:   &fakeResolver{},
		downloader: &fakeDownloader{},
		tagger:     &fakeTagger{},
		playlist:   &fakePlaylist{},
		dir:        t.TempDir(),
	}

	settings := config.DefaultSettings()
	settings.DownloadsPath = h.dir

	h.manager = newManager(settings, components{
		source:     h.source,
		resolver:   h.resolver,
		downloader: h.downloader,
		tagger:     h.tagger,
		playlist:   h.playlist,
	}, func(e ProgressEvent) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, e)
	})
	return h
}

func (h *harness) messages(level ProgressLevel) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, e := range h.events {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name+model.AudioExtension)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestManager_SingleTrackScenario(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", "http://img/1"))

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Queued != 1 || summary.Done != 1 {
		t.Errorf("summary = %+v, want 1 queued, 1 done", summary)
	}
	if !exists(h.path("Band Song")) {
		t.Error("Band Song.m4a was not written")
	}
	if h.tagger.calls.Load() != 1 {
		t.Errorf("tag calls = %d, want 1", h.tagger.calls.Load())
	}
	if got := summary.Results[0].Track.SourceURL; got == "" {
		t.Error("source URL not recorded on the track")
	}
	if msgs := h.messages(LevelSuccess); len(msgs) == 0 || msgs[0] != "Downloaded: Band Song" {
		t.Errorf("success messages = %v", msgs)
	}
}

func TestManager_SkipsExistingFile(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	if err := os.WriteFile(h.path("Band Song"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if h.downloader.calls.Load() != 0 || h.tagger.calls.Load() != 0 {
		t.Error("existing file should not be downloaded or tagged")
	}
	if h.resolver.calls.Load() != 1 {
		t.Errorf("resolve calls = %d, want 1 (resolution precedes the existence check)", h.resolver.calls.Load())
	}
	data, _ := os.ReadFile(h.path("Band Song"))
	if string(data) != "old" {
		t.Error("existing file was modified")
	}

	found := false
	for _, msg := range h.messages(LevelInfo) {
		if msg == "Skipping Band Song: Already Downloaded" {
			found = true
		}
	}
	if !found {
		t.Error("missing skip message")
	}
}

func TestManager_FailureIsolation(t *testing.T) {
	h := newHarness(t,
		model.NewTrack("One", "Band", "Album", ""),
		model.NewTrack("Two", "Band", "Album", ""),
		model.NewTrack("Three", "Band", "Album", ""),
	)
	h.tagger.fail = map[string]bool{"Band Two": true}

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Done != 2 || summary.Failed != 1 {
		t.Errorf("summary = done %d failed %d, want 2/1", summary.Done, summary.Failed)
	}
	if exists(h.path("Band Two")) {
		t.Error("failed track file was not removed")
	}
	if !exists(h.path("Band One")) || !exists(h.path("Band Three")) {
		t.Error("sibling tracks were not written")
	}
	if summary.Results[1].Status != StatusFailed {
		t.Errorf("Results[1].Status = %v, want failed (results in playlist order)", summary.Results[1].Status)
	}
}

func TestManager_DownloadFailureCleansUp(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	h.downloader.fail = map[string]bool{"Band Song": true}
	h.downloader.partial = true
	h.tagger.fail = map[string]bool{"Band Song": true}

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if exists(h.path("Band Song")) {
		t.Error("partial file left behind")
	}
}

func TestManager_DownloadErrorReportedWithTagError(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	h.downloader.fail = map[string]bool{"Band Song": true}

	summary, _ := h.manager.Run(context.Background(), "pl1")

	result := summary.Results[0]
	if result.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", result.Status)
	}
	if h.tagger.calls.Load() != 1 {
		t.Error("tagging should still be attempted after a download error")
	}
	if !errors.Is(result.Err, os.ErrNotExist) {
		t.Errorf("Err = %v, want not-exist from tagging", result.Err)
	}
	if !strings.Contains(result.Err.Error(), "stream interrupted") {
		t.Errorf("Err = %v, want the download cause included", result.Err)
	}

	errs := h.messages(LevelError)
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "Error downloading Band Song: ") {
		t.Errorf("error messages = %v", errs)
	}
}

func TestManager_NoMatchContinuesAndFailsAtTag(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	h.resolver.errs = map[string]error{"Band Song": fmt.Errorf("search: %w", youtube.ErrNoMatch)}

	summary, _ := h.manager.Run(context.Background(), "pl1")

	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if h.downloader.calls.Load() != 1 {
		t.Error("download should still be attempted after no match")
	}
	if !errors.Is(summary.Results[0].Err, youtube.ErrNoSource) {
		t.Errorf("Err = %v, want ErrNoSource among causes", summary.Results[0].Err)
	}
	if summary.Results[0].Track.HasSource() {
		t.Error("source should stay empty")
	}
}

func TestManager_ResolveErrorFailsTrack(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	h.resolver.errs = map[string]error{"Band Song": errors.New("connection refused")}

	summary, _ := h.manager.Run(context.Background(), "pl1")

	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if h.downloader.calls.Load() != 0 {
		t.Error("download attempted after a resolve transport error")
	}
}

func TestManager_PresetSourceSkipsResolve(t *testing.T) {
	track := model.NewTrack("Song", "Band", "Album", "")
	track.SetSourceURL("https://www.youtube.com/watch?v=bbbbbbbbbbb")
	h := newHarness(t, track)

	if _, err := h.manager.Run(context.Background(), "pl1"); err != nil {
		t.Fatal(err)
	}
	if h.resolver.calls.Load() != 0 {
		t.Error("resolver called for a track that already has a source")
	}
}

func TestManager_ConcurrencyBound(t *testing.T) {
	var tracks []*model.Track
	for i := 0; i < 12; i++ {
		tracks = append(tracks, model.NewTrack(fmt.Sprintf("Song %d", i), "Band", "Album", ""))
	}
	h := newHarness(t, tracks...)
	h.manager.settings.MaxConcurrentTracksDownload = 3
	h.downloader.delay = 20 * time.Millisecond

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Done != 12 {
		t.Errorf("Done = %d, want 12", summary.Done)
	}
	if got := h.downloader.maxActive.Load(); got > 3 {
		t.Errorf("max concurrent downloads = %d, want <= 3", got)
	}
}

func TestManager_UnboundedRunsAllAtOnce(t *testing.T) {
	var tracks []*model.Track
	for i := 0; i < 8; i++ {
		tracks = append(tracks, model.NewTrack(fmt.Sprintf("Song %d", i), "Band", "Album", ""))
	}
	h := newHarness(t, tracks...)
	h.downloader.delay = 100 * time.Millisecond

	start := time.Now()
	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Done != 8 {
		t.Errorf("Done = %d, want 8", summary.Done)
	}
	if elapsed := time.Since(start); elapsed > 600*time.Millisecond {
		t.Errorf("Run() took %v, downloads did not overlap", elapsed)
	}
}

func TestManager_StrictFetchErrorReturned(t *testing.T) {
	h := newHarness(t, model.NewTrack("Song", "Band", "Album", ""))
	h.source.err = errors.New("malformed playlist item")

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err == nil {
		t.Fatal("Run() error = nil, want fetch error")
	}
	if summary == nil || summary.Done != 1 {
		t.Errorf("tracks yielded before the error should still complete, summary = %+v", summary)
	}
}

func TestManager_WritesPlaylistOfCompletedTracks(t *testing.T) {
	h := newHarness(t,
		model.NewTrack("One", "Band", "Album", ""),
		model.NewTrack("Two", "Band", "Album", ""),
		model.NewTrack("Three", "Band", "Album", ""),
	)
	h.source.name = "Road Trip"
	h.manager.settings.CreatePlaylist = true
	h.tagger.fail = map[string]bool{"Band Two": true}
	if err := os.WriteFile(h.path("Band Three"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}

	pl := h.playlist.written
	if pl == nil {
		t.Fatal("playlist not written")
	}
	if pl.Name != "Road Trip" || pl.Dir != h.dir {
		t.Errorf("playlist = %q in %q", pl.Name, pl.Dir)
	}
	var names []string
	for _, tr := range pl.Tracks {
		names = append(names, tr.CanonicalName())
	}
	if got := strings.Join(names, ","); got != "Band One,Band Three" {
		t.Errorf("playlist tracks = %s, want Band One,Band Three", got)
	}
	if summary.PlaylistPath == "" {
		t.Error("PlaylistPath not set")
	}
}

func TestManager_PlaylistNameFallback(t *testing.T) {
	h := newHarness(t, model.NewTrack("One", "Band", "Album", ""))
	h.manager.settings.CreatePlaylist = true

	if _, err := h.manager.Run(context.Background(), "pl1"); err != nil {
		t.Fatal(err)
	}
	if h.playlist.written == nil || h.playlist.written.Name != "pl1" {
		t.Errorf("playlist name should fall back to the playlist ID")
	}
}

func TestManager_GetProgress(t *testing.T) {
	h := newHarness(t,
		model.NewTrack("One", "Band", "Album", ""),
		model.NewTrack("Two", "Band", "Album", ""),
	)

	if _, err := h.manager.Run(context.Background(), "pl1"); err != nil {
		t.Fatal(err)
	}

	received, finished, queued := h.manager.GetProgress()
	if received != 10 {
		t.Errorf("received = %d, want 10", received)
	}
	if finished != 2 || queued != 2 {
		t.Errorf("finished/queued = %d/%d, want 2/2", finished, queued)
	}
}

func TestManager_EmptyPlaylist(t *testing.T) {
	h := newHarness(t)

	summary, err := h.manager.Run(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Queued != 0 || len(summary.Results) != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusDone, "done"},
		{StatusSkipped, "skipped"},
		{StatusFailed, "failed"},
		{Status(9), "Status(9)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSummary_CompletedAndFailures(t *testing.T) {
	a := model.NewTrack("A", "Band", "", "")
	b := model.NewTrack("B", "Band", "", "")
	c := model.NewTrack("C", "Band", "", "")

	s := newSummary("pl", []Result{
		{Track: a, Status: StatusDone},
		{Track: b, Status: StatusFailed, Err: errors.New("boom")},
		{Track: c, Status: StatusSkipped},
	})

	if s.Queued != 3 || s.Done != 1 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("counts = %+v", s)
	}

	completed := s.Completed()
	if len(completed) != 2 || completed[0] != a || completed[1] != c {
		t.Errorf("Completed() = %v, want [A C]", completed)
	}

	failures := s.Failures()
	if len(failures) != 1 || failures[0].Track != b {
		t.Errorf("Failures() = %v, want [B]", failures)
	}
}
