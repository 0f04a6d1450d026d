package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/handiism/playlist-downloader/internal/audio"
	"github.com/handiism/playlist-downloader/internal/model"
	"github.com/handiism/playlist-downloader/internal/spotify"
)

// Environment variables read by ApplyEnv.
const (
	EnvClientID     = "SPOTIPY_CLIENT_ID"
	EnvClientSecret = "SPOTIPY_CLIENT_SECRET"
	EnvAccessToken  = "SPOTIFY_ACCESS_TOKEN"
)

//go:embed config.example.toml
var exampleConf []byte

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath               string `toml:"downloads_path"`
	MaxConcurrentTracksDownload int    `toml:"max_concurrent_tracks"` // <= 0 means unbounded
	TrackLimit                  int    `toml:"track_limit"`
	LenientDecoding             bool   `toml:"lenient_decoding"`
	RequestTimeoutSeconds       int    `toml:"request_timeout_seconds"` // 0 means none

	// Cover art settings
	EmbedCoverArt        bool `toml:"embed_cover_art"`
	CoverArtMaxSize      int  `toml:"cover_art_max_size"` // 0 keeps the original size
	ConvertCoverArtToJPG bool `toml:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains catalog API credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	APIBaseURL   string `toml:"api_base_url"`
	TokenURL     string `toml:"token_url"`
}

// YouTubeConfig contains search endpoint settings.
type YouTubeConfig struct {
	BaseURL string `toml:"base_url"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath:               "downloads",
		MaxConcurrentTracksDownload: 0,
		TrackLimit:                  10000,
		LenientDecoding:             true,
		RequestTimeoutSeconds:       0,

		EmbedCoverArt:        true,
		CoverArtMaxSize:      0,
		ConvertCoverArtToJPG: false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		Spotify: SpotifyConfig{
			APIBaseURL: "https://api.spotify.com/v1",
			TokenURL:   "https://accounts.spotify.com/api/token",
		},
		YouTube: YouTubeConfig{
			BaseURL: "https://www.youtube.com",
		},
	}
}

// Load reads settings from a TOML file.
//
// Keys missing from the file keep their default values. A missing file
// yields DefaultSettings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// CreateConfigFile writes the commented example configuration to path.
// It refuses to overwrite an existing file.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides credentials with non-empty environment variables.
func (s *Settings) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvClientID)); v != "" {
		s.Spotify.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvClientSecret)); v != "" {
		s.Spotify.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAccessToken)); v != "" {
		s.Spotify.AccessToken = v
	}
}

// RequestTimeout returns the per-request timeout (zero means none).
func (s *Settings) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ToPlaylistFormat converts the configured playlist format name.
func (s *Settings) ToPlaylistFormat() model.PlaylistFormat {
	return model.ParsePlaylistFormat(s.PlaylistFormat)
}

// Credentials returns the catalog credentials from the settings.
func (s *Settings) Credentials() spotify.Credentials {
	return spotify.Credentials{
		ClientID:     s.Spotify.ClientID,
		ClientSecret: s.Spotify.ClientSecret,
		AccessToken:  s.Spotify.AccessToken,
		TokenURL:     s.Spotify.TokenURL,
	}
}

// ToTagConfig converts settings to the tagger configuration.
func (s *Settings) ToTagConfig() audio.TagConfig {
	return audio.TagConfig{
		EmbedCoverArt:        s.EmbedCoverArt,
		CoverArtMaxSize:      s.CoverArtMaxSize,
		ConvertCoverArtToJPG: s.ConvertCoverArtToJPG,
	}
}
