package common

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSink struct {
	frames   chan []byte
	speaking []bool
}

func (f *fakeSink) Frames() chan<- []byte { return f.frames }

func (f *fakeSink) Speaking(b bool) error {
	f.speaking = append(f.speaking, b)
	return nil
}

func TestPCMToSamples(t *testing.T) {
	data := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80}
	samples := make([]int16, 3)

	pcmToSamples(data, samples)
	assert.Equal(t, []int16{1, -1, -32768}, samples)
}

func TestPumpWhileMutedSendsNothing(t *testing.T) {
	sink := &fakeSink{frames: make(chan []byte, 4)}
	pipeline := NewAudioPipeline(sink, zap.NewNop())
	pipeline.SetMuted(true)

	// Three full frames and a trailing partial one.
	pcm := bytes.NewReader(make([]byte, frameBytes*3+10))

	require.NoError(t, pipeline.pump(pcm, nil))
	assert.Empty(t, sink.frames)
}

func TestStopWithoutStart(t *testing.T) {
	pipeline := NewAudioPipeline(&fakeSink{frames: make(chan []byte)}, zap.NewNop())

	assert.False(t, pipeline.IsPlaying())
	pipeline.Stop()
	assert.False(t, pipeline.IsPlaying())
}

func TestDoneClosesWhenStreamEnds(t *testing.T) {
	pipeline := NewAudioPipeline(&fakeSink{frames: make(chan []byte)}, zap.NewNop())
	pipeline.ffmpegPath = "/nonexistent/ffmpeg"

	require.NoError(t, pipeline.Start("stream://a"))

	select {
	case <-pipeline.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not finish")
	}
	assert.False(t, pipeline.IsPlaying())
	assert.ErrorIs(t, pipeline.Start("stream://b"), ErrPipelineFinished)
}
