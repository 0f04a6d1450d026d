// Package spotify reads playlists from the Spotify Web API.
//
// # Authentication
//
// Credentials turns either a ready-made access token or a client ID/secret
// pair into a bearer token:
//
//	token, err := spotify.Credentials{
//	    ClientID:     os.Getenv("SPOTIPY_CLIENT_ID"),
//	    ClientSecret: os.Getenv("SPOTIPY_CLIENT_SECRET"),
//	}.Token(ctx, nil)
//
// # Fetching Tracks
//
// Fetcher pages through /playlists/{id}/tracks fifty items at a time and
// exposes the result as a lazy iter.Seq2:
//
//	f := spotify.NewFetcher(http.NewClient(0), token, logger)
//	for track, err := range f.Tracks(ctx, "37i9dQZF1DXcBWIGoYBM5M") {
//	    ...
//	}
//
// Items that lack a title, album name, album image or artist are skipped
// unless Lenient is turned off, in which case the sequence ends with an
// error wrapping ErrMalformedItem.
package spotify
