package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zhaarey/go-mp4tag"

	httpc "github.com/handiism/playlist-downloader/internal/http"
	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/model"
)

// ErrNoCoverArt is returned when cover art is requested for a track without
// a cover URL.
var ErrNoCoverArt = errors.New("track has no cover art URL")

// TagConfig controls how cover art is embedded.
//
// Example:
//
//	cfg := TagConfig{
//	    EmbedCoverArt:   true,
//	    CoverArtMaxSize: 600, // shrink to fit 600x600, JPEG output
//	}
type TagConfig struct {
	// EmbedCoverArt fetches the cover image and stores it in the covr atom.
	EmbedCoverArt bool

	// CoverArtMaxSize is the longest edge in pixels. Zero keeps the
	// fetched image as is.
	CoverArtMaxSize int

	// ConvertCoverArtToJPG re-encodes non-JPEG covers as JPEG.
	ConvertCoverArtToJPG bool
}

// DefaultTagConfig embeds the cover exactly as fetched.
func DefaultTagConfig() TagConfig {
	return TagConfig{EmbedCoverArt: true}
}

// tagWriter is an open MP4 file whose metadata atoms can be rewritten.
type tagWriter interface {
	Write(tags *mp4tag.MP4Tags) error
	Close()
}

type mp4File struct {
	write func(*mp4tag.MP4Tags) error
	close func()
}

func (f *mp4File) Write(tags *mp4tag.MP4Tags) error { return f.write(tags) }
func (f *mp4File) Close()                           { f.close() }

func openMP4(path string) (tagWriter, error) {
	m, err := mp4tag.Open(path)
	if err != nil {
		return nil, err
	}
	return &mp4File{
		write: func(tags *mp4tag.MP4Tags) error { return m.Write(tags, []string{}) },
		close: func() { m.Close() },
	}, nil
}

// Tagger writes title, artist, album and cover art to downloaded .m4a files.
//
// Example:
//
//	tagger := NewTagger(httpClient, DefaultTagConfig())
//	if err := tagger.Tag(ctx, track, "/music/Band Song.m4a"); err != nil {
//	    log.Printf("Failed to tag %s: %v", track.CanonicalName(), err)
//	}
type Tagger struct {
	client *httpc.Client
	images *ioutils.ImageService
	config TagConfig
	open   func(path string) (tagWriter, error)
}

// NewTagger creates a new Tagger with the given configuration.
func NewTagger(client *httpc.Client, config TagConfig) *Tagger {
	return &Tagger{
		client: client,
		images: ioutils.NewImageService(),
		config: config,
		open:   openMP4,
	}
}

// Tag writes the track's metadata into the file at path.
//
// This method:
//  1. Fails if path does not exist
//  2. Fetches the cover image (when EmbedCoverArt is set)
//  3. Writes the ©nam, ©ART, ©alb and covr atoms and saves the file
func (t *Tagger) Tag(ctx context.Context, track *model.Track, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("tag: %w", err)
	}

	tags := &mp4tag.MP4Tags{
		Title:  track.Title,
		Artist: track.Artist,
		Album:  track.Album,
	}

	if t.config.EmbedCoverArt {
		pic, err := t.coverPicture(ctx, track)
		if err != nil {
			return fmt.Errorf("cover art: %w", err)
		}
		tags.Pictures = []*mp4tag.MP4Picture{pic}
	}

	f, err := t.open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Write(tags); err != nil {
		return fmt.Errorf("write tags %s: %w", path, err)
	}
	return nil
}

// coverPicture fetches the cover with a single GET and applies the
// configured resize/convert steps.
func (t *Tagger) coverPicture(ctx context.Context, track *model.Track) (*mp4tag.MP4Picture, error) {
	if !track.HasCoverArt() {
		return nil, ErrNoCoverArt
	}

	data, err := t.client.DownloadBytes(ctx, track.CoverArtURL)
	if err != nil {
		return nil, err
	}

	data, err = t.images.Prepare(ctx, data, t.config.CoverArtMaxSize, t.config.ConvertCoverArtToJPG)
	if err != nil {
		return nil, err
	}

	format := mp4tag.ImageTypeJPEG
	if ioutils.DetectImageFormat(data) == ioutils.ImageFormatPNG {
		format = mp4tag.ImageTypePNG
	}
	return &mp4tag.MP4Picture{Format: format, Data: data}, nil
}
