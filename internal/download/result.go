package download

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/handiism/playlist-downloader/internal/model"
)

// Status is the terminal state of one track.
type Status int

const (
	// StatusDone means the track was downloaded and tagged.
	StatusDone Status = iota

	// StatusSkipped means the target file already existed.
	StatusSkipped

	// StatusFailed means a step failed and any partial file was removed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of processing one track.
type Result struct {
	Track  *model.Track
	Status Status

	// Err is set when Status is StatusFailed. When both the download and
	// the tagging failed it carries both causes.
	Err error
}

// Summary describes a finished run.
type Summary struct {
	PlaylistID string

	// Results are in playlist order.
	Results []Result

	Queued  int
	Done    int
	Skipped int
	Failed  int

	// PlaylistPath is the playlist file written for the run, if any.
	PlaylistPath string
}

// Completed returns the tracks that are on disk after the run (done or
// skipped), in playlist order.
func (s *Summary) Completed() []*model.Track {
	return lo.FilterMap(s.Results, func(r Result, _ int) (*model.Track, bool) {
		return r.Track, r.Status == StatusDone || r.Status == StatusSkipped
	})
}

// Failures returns the failed results in playlist order.
func (s *Summary) Failures() []Result {
	return lo.Filter(s.Results, func(r Result, _ int) bool {
		return r.Status == StatusFailed
	})
}

func newSummary(playlistID string, results []Result) *Summary {
	s := &Summary{
		PlaylistID: playlistID,
		Results:    results,
		Queued:     len(results),
	}
	for _, r := range results {
		switch r.Status {
		case StatusDone:
			s.Done++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
