// Package model defines the core data structures used throughout
// the playlist-downloader application.
//
// # Track
//
// Track describes one playlist entry and where its audio ends up on disk:
//
//	track := model.NewTrack("Song", "Band", "Album", coverURL)
//	fmt.Println(track.CanonicalName()) // "Band Song"
//	fmt.Println(track.FileName())      // "Band Song.m4a"
//
// The canonical name is derived from the artist and title once and then
// cached. It doubles as the search query and as the on-disk file name, so
// it never contains characters that are unsafe in paths or URLs.
//
// # Playlist
//
// Playlist groups the tracks of one run for writing a playlist file next
// to the downloaded audio:
//
//	pl := model.NewPlaylist("Road Trip", "/music/road-trip")
//	pl.Tracks = append(pl.Tracks, track)
//	fmt.Println(pl.Path(model.PlaylistFormatM3U)) // "/music/road-trip/Road Trip.m3u"
package model
