package extractor

import (
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatExt(t *testing.T) {
	assert.Equal(t, "mp4", formatExt(`video/mp4; codecs="avc1.64001F, mp4a.40.2"`))
	assert.Equal(t, "webm", formatExt(`audio/webm; codecs="opus"`))
	assert.Equal(t, "mp4", formatExt("video/mp4"))
	assert.Equal(t, "", formatExt(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My Video- Part 1-2", sanitizeFilename(`My Video: Part 1/2`))
	assert.Equal(t, "a-b-c", sanitizeFilename(`a?b*c`))
	assert.Equal(t, "download", sanitizeFilename("   "))
	assert.Equal(t, "plain title", sanitizeFilename("plain title"))
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "00:45", formatETA(45*time.Second))
	assert.Equal(t, "02:05", formatETA(125*time.Second))
	assert.Equal(t, "01:00:01", formatETA(3601*time.Second))
	assert.Equal(t, "00:00", formatETA(-5*time.Second))
}

func TestFormatOptionsMapping(t *testing.T) {
	formats := youtube.FormatList{
		{
			ItagNo:        134,
			MimeType:      `video/mp4; codecs="avc1.4d401e"`,
			QualityLabel:  "360p",
			ContentLength: 4_300_000,
		},
		{
			ItagNo:        136,
			MimeType:      `video/mp4; codecs="avc1.64001f"`,
			QualityLabel:  "720p",
			ContentLength: 12_800_000,
		},
		{
			ItagNo:   140,
			MimeType: `audio/mp4; codecs="mp4a.40.2"`,
			// audio-only: no quality label, length unknown
		},
	}

	options := formatOptions(formats)
	require.Len(t, options, 3)

	// Source order is preserved
	assert.Equal(t, "134", options[0].ID)
	assert.Equal(t, "136", options[1].ID)
	assert.Equal(t, "140", options[2].ID)

	require.NotNil(t, options[1].Resolution)
	assert.Equal(t, "720p", *options[1].Resolution)
	require.NotNil(t, options[1].Filesize)
	assert.Equal(t, int64(12_800_000), *options[1].Filesize)

	assert.Nil(t, options[2].Resolution)
	assert.Nil(t, options[2].Filesize)

	assert.Equal(t, "mp4", options[0].Ext)
	assert.Equal(t, "mp4", options[2].Ext)
}

func TestProgressWriterReportsMonotonicPercent(t *testing.T) {
	var percents []float64
	w := newProgressWriter(100, func(percent float64, speed, eta string) {
		percents = append(percents, percent)
	})

	// First write reports immediately, the final write reports because the
	// transfer is complete.
	_, err := w.Write(make([]byte, 40))
	require.NoError(t, err)
	_, err = w.Write(make([]byte, 60))
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100.0, percents[len(percents)-1])
}

func TestProgressWriterUnknownTotal(t *testing.T) {
	called := false
	w := newProgressWriter(0, func(percent float64, speed, eta string) {
		called = true
	})

	_, err := w.Write(make([]byte, 1024))
	require.NoError(t, err)
	assert.False(t, called, "no percent can be derived without a total")
}
