// Package audio handles MP4 metadata tagging and playlist generation.
//
// # Tagging
//
// Tagger writes the track title, artist and album into the iTunes-style
// atoms of a downloaded .m4a file and embeds the album cover:
//
//	tagger := audio.NewTagger(httpClient, audio.DefaultTagConfig())
//	err := tagger.Tag(ctx, track, "/music/Band Song.m4a")
//
// The cover is fetched with a single GET. By default the bytes are stored
// as fetched; TagConfig can shrink them or convert them to JPEG first.
//
// # Playlists
//
// PlaylistCreator renders the finished tracks of a run as M3U, PLS, WPL
// or ZPL:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	path, err := creator.Write(ctx, playlist)
package audio
