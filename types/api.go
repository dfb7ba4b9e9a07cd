package types

import "time"

// ProbeRequest is the body of POST /api/probe.
type ProbeRequest struct {
	URL string `json:"url"`
}

// DownloadRequest is the body of POST /api/downloads.
type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
}

// MediaFile represents a file discovered in the download directory.
type MediaFile struct {
	Filename   string     `json:"filename"`
	Size       int64      `json:"size"`
	Ext        string     `json:"ext"`
	ModifiedAt time.Time  `json:"modifiedAt"`
	Audio      *AudioTags `json:"audio,omitempty"`
}

// AudioTags holds embedded metadata for audio-only downloads.
type AudioTags struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}
