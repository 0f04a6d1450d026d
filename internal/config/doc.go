// Package config provides configuration management for playlist-downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Credential overrides from the environment
//   - Conversion to the tagger and playlist configuration of other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to ./downloads
//	// One worker per track
//	// Cover art embedded as fetched
//
// # Loading from File
//
//	settings, err := config.Load("config.toml")
//	// A missing file yields the defaults
//	settings.ApplyEnv() // SPOTIPY_CLIENT_ID, SPOTIPY_CLIENT_SECRET, SPOTIFY_ACCESS_TOKEN
//
// # Example File
//
// CreateConfigFile writes a commented example:
//
//	err := config.CreateConfigFile("config.toml")
package config
