// Package youtube resolves tracks to watch URLs and downloads their audio.
//
// # Resolving
//
// Resolver builds a search query from the track's canonical name, fetches
// the results page and takes the first "watch?v=" link it finds:
//
//	r := youtube.NewResolver(httpClient)
//	source, err := r.Resolve(ctx, track)
//	if errors.Is(err, youtube.ErrNoMatch) {
//	    // nothing found
//	}
//
// # Downloading
//
// Downloader asks the stream provider for the video, picks the best
// audio-only format (audio/mp4 preferred) and streams it to disk:
//
//	d := youtube.NewDownloader(nil)
//	err := d.Download(ctx, source, "/music/Band Song.m4a", nil)
package youtube
