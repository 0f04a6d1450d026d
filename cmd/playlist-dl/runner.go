package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/handiism/playlist-downloader/internal/config"
	"github.com/handiism/playlist-downloader/internal/download"
	"github.com/handiism/playlist-downloader/internal/spotify"
)

const defaultConfigPath = "config.toml"

var errMissingPlaylistID = errors.New("missing playlist id: use --playlist-id")

// Runner holds the shared state of the CLI actions.
type Runner struct {
	logger *log.Logger
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true})
}

func newApp(logger *log.Logger) *cli.Command {
	r := &Runner{logger: logger}

	return &cli.Command{
		Name:    "playlist-dl",
		Usage:   "Download a Spotify playlist as tagged m4a files",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist-id",
				Aliases: []string{"i"},
				Usage:   "Spotify playlist ID, URI or URL",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Destination directory",
				Value:   "downloads",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Spotify bearer token (skips the client credentials flow)",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum tracks processed at once (0 = unbounded)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to read from the playlist (0 = 10000)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Stop at the first malformed playlist item",
			},
			&cli.BoolFlag{
				Name:  "playlist",
				Usage: "Write a playlist file next to the downloads",
			},
			&cli.StringFlag{
				Name:  "playlist-format",
				Usage: "Playlist file format: m3u, pls, wpl or zpl",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug output",
			},
		},
		Action: r.Download,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file to --config",
				Action: r.InitConfig,
			},
		},
	}
}

// Download runs one playlist download.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	playlistID := spotify.ParsePlaylistID(cmd.String("playlist-id"))
	if playlistID == "" {
		return errMissingPlaylistID
	}

	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}

	settings, err := r.loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := r.logger.With("run", uuid.NewString()[:8], "playlist", playlistID)

	token, err := settings.Credentials().Token(ctx, nil)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	logger.Info("starting download", "path", settings.DownloadsPath)

	manager := download.NewManager(settings, token, progressLogger(logger))
	summary, err := manager.Run(ctx, playlistID)
	if summary != nil {
		printSummary(logger, summary)
	}
	return err
}

// InitConfig writes the example configuration.
func (r *Runner) InitConfig(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return nil
}

// loadSettings merges the config file, the environment and the flags, in
// that order.
func (r *Runner) loadSettings(cmd *cli.Command) (*config.Settings, error) {
	configPath := cmd.String("config")
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	settings.ApplyEnv()

	if cmd.IsSet("path") {
		settings.DownloadsPath = cmd.String("path")
	}
	if cmd.IsSet("token") {
		settings.Spotify.AccessToken = cmd.String("token")
	}
	if cmd.IsSet("concurrency") {
		settings.MaxConcurrentTracksDownload = cmd.Int("concurrency")
	}
	if cmd.IsSet("limit") {
		settings.TrackLimit = cmd.Int("limit")
	}
	if cmd.Bool("strict") {
		settings.LenientDecoding = false
	}
	if cmd.Bool("playlist") {
		settings.CreatePlaylist = true
	}
	if cmd.IsSet("playlist-format") {
		settings.PlaylistFormat = cmd.String("playlist-format")
	}

	r.logger.Debug("settings loaded", "config", configPath, "path", settings.DownloadsPath)
	return settings, nil
}

// progressLogger maps manager events onto logger levels.
func progressLogger(logger *log.Logger) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelVerbose:
			logger.Debug(event.Message)
		case download.LevelWarning:
			logger.Warn(event.Message)
		case download.LevelError:
			logger.Error(event.Message)
		default:
			logger.Info(event.Message)
		}
	}
}

func printSummary(logger *log.Logger, summary *download.Summary) {
	logger.Info("summary",
		"queued", summary.Queued,
		"done", summary.Done,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	for _, r := range summary.Failures() {
		logger.Error("failed", "track", r.Track.CanonicalName(), "error", r.Err)
	}
	if summary.PlaylistPath != "" {
		logger.Info("playlist written", "file", filepath.Base(summary.PlaylistPath))
	}
}
