package common

import (
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestURLDetection tests the URL detection functionality
func TestURLDetection(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"http://www.example.com", true},
		{"www.example.com", true},
		{"rick astley", false},
		{"never gonna give you up", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, IsURL(tc.input), tc.input)
	}
}

func TestExtractYouTubeVideoID(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no id", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ExtractYouTubeVideoID(tc.input), tc.input)
	}
}

func TestParseSeconds(t *testing.T) {
	assert.Equal(t, 212*time.Second, parseSeconds("212"))
	assert.Equal(t, 1500*time.Millisecond, parseSeconds("1.5"))
	assert.Equal(t, time.Duration(0), parseSeconds("NA"))
	assert.Equal(t, time.Duration(0), parseSeconds(""))
}

func TestBestAudioFormat(t *testing.T) {
	t.Run("prefers audio only", func(t *testing.T) {
		formats := youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
			{ItagNo: 139, MimeType: `audio/mp4; codecs="mp4a.40.5"`, Bitrate: 48000, AudioChannels: 2},
			{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
			{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
		}

		format, ok := bestAudioFormat(formats)
		require.True(t, ok)
		assert.Equal(t, 251, format.ItagNo)
	})

	t.Run("falls back to muxed", func(t *testing.T) {
		formats := youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
			{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Bitrate: 900000, AudioChannels: 2},
		}

		format, ok := bestAudioFormat(formats)
		require.True(t, ok)
		assert.Equal(t, 22, format.ItagNo)
	})

	t.Run("no audio", func(t *testing.T) {
		_, ok := bestAudioFormat(youtube.FormatList{{ItagNo: 137, MimeType: "video/mp4"}})
		assert.False(t, ok)
	})
}
