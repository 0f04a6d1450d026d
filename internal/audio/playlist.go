package audio

import (
	"context"
	"fmt"
	"strings"

	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/model"
)

// Generator is written into ZPL playlists.
const Generator = "PlaylistDownloader"

// PlaylistCreator generates playlist files in various formats.
//
// Track entries are bare file names, so the playlist file is expected to
// live in the same directory as the tracks.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	path, err := creator.Write(ctx, playlist)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:215,Band - Song
//	// Band Song.m4a
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Write renders the playlist and saves it to playlist.Path(format).
// It returns the path written.
func (p *PlaylistCreator) Write(ctx context.Context, playlist *model.Playlist) (string, error) {
	path := playlist.Path(p.format)
	if err := ioutils.WriteFile(ctx, path, []byte(p.CreatePlaylist(playlist))); err != nil {
		return "", fmt.Errorf("write playlist %s: %w", path, err)
	}
	return path, nil
}

// CreatePlaylist generates playlist content.
func (p *PlaylistCreator) CreatePlaylist(playlist *model.Playlist) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(playlist)
	case model.PlaylistFormatWPL:
		return p.createWPL(playlist)
	case model.PlaylistFormatZPL:
		return p.createZPL(playlist)
	default:
		return p.createM3U(playlist)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:215,Band - Song
//	Band Song.m4a
func (p *PlaylistCreator) createM3U(playlist *model.Playlist) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range playlist.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(track.Duration), track.Artist, track.Title)
		}
		sb.WriteString(track.FileName() + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(playlist *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range playlist.Tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, track.FileName())
		fmt.Fprintf(&sb, "Title%d=%s - %s\n", idx, track.Artist, track.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(track.Duration))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(playlist.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(playlist *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(playlist.Name))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range playlist.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(track.FileName()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune playlist. Unlike WPL each entry carries the
// album, artist, title and duration in milliseconds.
func (p *PlaylistCreator) createZPL(playlist *model.Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(playlist.Name))
	fmt.Fprintf(&sb, "    <meta name=\"Generator\" content=\"%s\"/>\n", Generator)
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(playlist.Tracks))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range playlist.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(track.FileName()),
			escapeXML(track.Album),
			escapeXML(track.Title),
			escapeXML(track.Artist),
			int64(track.Duration*1000))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
