// Package extractor wraps the external media extraction capability behind a
// narrow contract: probe a URL for available formats, or download one format
// while reporting progress.
package extractor

import (
	"context"
	"fmt"

	"tubegrab/types"
)

// ProgressFunc receives transfer progress. percent is 0-100 and never
// regresses within one download; speed and eta are advisory display strings.
// Callbacks arrive at source-defined intervals, not on any fixed cadence.
type ProgressFunc func(percent float64, speed, eta string)

// Extractor is the external media-info/download capability.
type Extractor interface {
	// Probe returns available format metadata for a URL. It never mutates
	// shared state. Failures are reported as *ExtractionError.
	Probe(ctx context.Context, url string) (*types.MediaInfo, error)

	// Download transfers the selected format to disk, invoking onProgress
	// zero or more times, and returns the resulting filename. Failures are
	// reported as *DownloadError.
	Download(ctx context.Context, url, formatID string, onProgress ProgressFunc) (string, error)
}

// ExtractionError means a probe could not produce format metadata: the URL
// was unreachable, unsupported, or the source returned no streams.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DownloadError means a transfer failed: network, disk, a bad format id, or
// the source becoming unavailable mid-transfer.
type DownloadError struct {
	URL      string
	FormatID string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s (format %s): %v", e.URL, e.FormatID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
