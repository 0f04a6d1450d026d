// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Existence checks and cleanup of downloaded files
//   - Directory creation
//   - Cover art resizing and format conversion
//
// # File Operations
//
//	if ioutils.FileExists(path) {
//	    // already downloaded
//	}
//
//	// Remove a partial or untaggable file
//	err := ioutils.RemoveIfExists(path)
//
//	// Ensure the destination directory exists
//	err := ioutils.EnsureDir("downloads")
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Shrink to fit within 600x600 (JPEG output)
//	cover, _ := svc.Prepare(ctx, imageData, 600, false)
//
//	// Only convert PNG covers to JPEG
//	cover, _ = svc.Prepare(ctx, imageData, 0, true)
package ioutils
