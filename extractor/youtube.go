package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tubegrab/types"

	"github.com/dustin/go-humanize"
	"github.com/kkdai/youtube/v2"
)

// YouTube implements Extractor on top of the kkdai/youtube client.
// Format ids are itag numbers rendered as strings.
type YouTube struct {
	client      youtube.Client
	downloadDir string
}

// NewYouTube creates an extractor writing files into downloadDir.
func NewYouTube(downloadDir string) *YouTube {
	return &YouTube{downloadDir: downloadDir}
}

// Probe fetches video metadata and maps the stream list to format options.
func (y *YouTube) Probe(ctx context.Context, url string) (*types.MediaInfo, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, &ExtractionError{URL: url, Err: err}
	}

	formats := formatOptions(video.Formats)
	if len(formats) == 0 {
		return nil, &ExtractionError{URL: url, Err: errors.New("no downloadable streams")}
	}

	thumbnail := ""
	if len(video.Thumbnails) > 0 {
		// Thumbnails are ordered smallest first; take the largest.
		thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	return &types.MediaInfo{
		Title:     video.Title,
		Duration:  int(video.Duration.Seconds()),
		Thumbnail: thumbnail,
		Formats:   formats,
	}, nil
}

// Download transfers the selected format to the download directory.
func (y *YouTube) Download(ctx context.Context, url, formatID string, onProgress ProgressFunc) (string, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}

	itag, err := strconv.Atoi(formatID)
	if err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: fmt.Errorf("invalid format id %q", formatID)}
	}

	matches := video.Formats.Itag(itag)
	if len(matches) == 0 {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: fmt.Errorf("format %q not offered by source", formatID)}
	}
	format := &matches[0]

	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}
	defer stream.Close()

	if err := os.MkdirAll(y.downloadDir, 0755); err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}

	filename := sanitizeFilename(video.Title) + "." + formatExt(format.MimeType)
	path := filepath.Join(y.downloadDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}

	counter := newProgressWriter(size, onProgress)
	if _, err := io.Copy(io.MultiWriter(out, counter), stream); err != nil {
		out.Close()
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}

	// A failed close can mean a truncated flush; the file must not be
	// reported as downloaded.
	if err := out.Close(); err != nil {
		return "", &DownloadError{URL: url, FormatID: formatID, Err: err}
	}

	return filename, nil
}

// progressWriter counts bytes written and reports percent/speed/eta through
// the download's ProgressFunc at a throttled interval.
type progressWriter struct {
	total      int64
	written    int64
	started    time.Time
	lastReport time.Time
	onProgress ProgressFunc
}

func newProgressWriter(total int64, onProgress ProgressFunc) *progressWriter {
	return &progressWriter{
		total:      total,
		started:    time.Now(),
		onProgress: onProgress,
	}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.written += int64(n)

	// Percent needs a known total; without one the source gives us nothing
	// monotonic to report.
	if w.onProgress == nil || w.total <= 0 {
		return n, nil
	}

	now := time.Now()
	done := w.written >= w.total
	if !done && now.Sub(w.lastReport) < 500*time.Millisecond {
		return n, nil
	}
	w.lastReport = now

	percent := float64(w.written) / float64(w.total) * 100
	if percent > 100 {
		percent = 100
	}

	speed, eta := "", ""
	if elapsed := now.Sub(w.started).Seconds(); elapsed > 0 {
		bps := float64(w.written) / elapsed
		speed = humanize.Bytes(uint64(bps)) + "/s"
		if bps > 0 {
			remaining := float64(w.total-w.written) / bps
			eta = formatETA(time.Duration(remaining * float64(time.Second)))
		}
	}

	w.onProgress(percent, speed, eta)
	return n, nil
}

// formatOptions maps the client's stream list to the wire format list,
// preserving the source order.
func formatOptions(formats youtube.FormatList) []types.FormatOption {
	options := make([]types.FormatOption, 0, len(formats))
	for _, f := range formats {
		option := types.FormatOption{
			ID:  strconv.Itoa(f.ItagNo),
			Ext: formatExt(f.MimeType),
		}
		if f.QualityLabel != "" {
			label := f.QualityLabel
			option.Resolution = &label
		}
		if f.ContentLength > 0 {
			size := f.ContentLength
			option.Filesize = &size
		}
		options = append(options, option)
	}
	return options
}

// formatExt derives a container extension from a MIME type like
// "video/mp4; codecs=...".
func formatExt(mimeType string) string {
	mediaType := mimeType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	if i := strings.Index(mediaType, "/"); i >= 0 {
		mediaType = mediaType[i+1:]
	}
	return strings.TrimSpace(mediaType)
}

// sanitizeFilename strips characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)

	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		return "download"
	}
	return sanitized
}

// formatETA renders a remaining duration as mm:ss (or hh:mm:ss past an hour).
func formatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
