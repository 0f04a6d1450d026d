package ioutils

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// FileExists reports whether a regular file or directory exists at path.
//
// Any error other than "not exist" (for example a permission error) is
// treated as existing, so callers never overwrite something they could not
// inspect.
//
// Example:
//
//	if ioutils.FileExists("/music/Band Song.m4a") {
//	    // skip
//	}
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// RemoveIfExists deletes the file at path. A missing file is not an error.
//
// Example:
//
//	err := RemoveIfExists("/music/Band Song.m4a")
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, "/music/playlist.m3u", playlistContent)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("downloads/road-trip")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
