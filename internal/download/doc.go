// Package download orchestrates fetching, downloading and tagging the
// tracks of one playlist.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Read the playlist lazily from the catalog
//  2. Start one unit of work per track as soon as it is read
//  3. In each unit: resolve a source, skip if the file exists, download, tag
//  4. Wait for every unit and optionally write a playlist file
//
// # Basic Usage
//
//	manager := download.NewManager(settings, token, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	summary, err := manager.Run(ctx, "37i9dQZF1DXcBWIGoYBM5M")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d done, %d skipped, %d failed\n", summary.Done, summary.Skipped, summary.Failed)
//
// # Failure Isolation
//
// A track that fails never stops its siblings. Its partial file is removed
// and the cause is kept in its Result. Download errors are not fatal on
// their own: tagging runs anyway, and the track fails there if the file is
// missing.
//
// # Concurrency
//
// settings.MaxConcurrentTracksDownload bounds the number of units running
// at once. Zero or a negative value starts every unit immediately.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package download
