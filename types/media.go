package types

// MediaInfo is the result of probing a media URL. Immutable once returned.
type MediaInfo struct {
	Title     string         `json:"title"`
	Duration  int            `json:"duration"` // seconds
	Thumbnail string         `json:"thumbnail"`
	Formats   []FormatOption `json:"formats"`
}

// FormatOption describes one downloadable encoding of a probed URL.
type FormatOption struct {
	ID         string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution *string `json:"resolution"` // nil for audio-only streams
	Filesize   *int64  `json:"filesize"`   // nil when not known up front
}
