package common

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"layeh.com/gopus"
)

const (
	sampleRate  = 48000
	channels    = 2
	frameSize   = 960 // 20ms at 48kHz
	frameBytes  = frameSize * channels * 2
	maxOpusSize = frameBytes
	bitrate     = 128000
)

var (
	ErrPipelineRunning  = errors.New("pipeline is already playing")
	ErrPipelineFinished = errors.New("pipeline has already finished")
)

// OpusSink receives encoded Opus frames; a *discordgo.VoiceConnection is
// adapted to this by the voice package.
type OpusSink interface {
	Frames() chan<- []byte
	Speaking(bool) error
}

// AudioPipeline streams one source: ffmpeg decodes to PCM, gopus encodes to
// Opus and frames are pushed to the sink.
type AudioPipeline struct {
	ctx    context.Context
	cancel context.CancelFunc
	sink   OpusSink
	logger *zap.Logger

	ffmpegPath string

	mu        sync.Mutex
	started   bool
	isPlaying bool
	done      chan struct{}

	muted atomic.Bool
}

// NewAudioPipeline creates a new audio pipeline
func NewAudioPipeline(sink OpusSink, logger *zap.Logger) *AudioPipeline {
	ctx, cancel := context.WithCancel(context.Background())

	return &AudioPipeline{
		ctx:        ctx,
		cancel:     cancel,
		sink:       sink,
		logger:     logger,
		ffmpegPath: "ffmpeg",
		done:       make(chan struct{}),
	}
}

// Start begins streaming streamURL in the background. A pipeline plays one
// stream; create a new one for the next source.
func (ap *AudioPipeline) Start(streamURL string) error {
	ap.mu.Lock()
	defer ap.mu.Unlock()

	if ap.isPlaying {
		return ErrPipelineRunning
	}
	if ap.started {
		return ErrPipelineFinished
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("failed to create opus encoder: %w", err)
	}
	encoder.SetBitrate(bitrate)

	ap.started = true
	ap.isPlaying = true
	go ap.run(streamURL, encoder)

	return nil
}

func (ap *AudioPipeline) run(streamURL string, encoder *gopus.Encoder) {
	defer func() {
		ap.mu.Lock()
		ap.isPlaying = false
		ap.mu.Unlock()
		close(ap.done)
	}()

	if err := ap.stream(streamURL, encoder); err != nil && !errors.Is(err, context.Canceled) {
		ap.logger.Error("audio stream failed", zap.Error(err))
		return
	}
	ap.logger.Debug("audio stream finished")
}

func (ap *AudioPipeline) stream(streamURL string, encoder *gopus.Encoder) error {
	cmd := exec.CommandContext(ap.ctx, ap.ffmpegPath,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", streamURL,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", "48000",
		"-ac", "2",
		"-loglevel", "error",
		"pipe:1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}()

	if err := ap.sink.Speaking(true); err != nil {
		ap.logger.Warn("failed to set speaking state", zap.Error(err))
	}
	defer ap.sink.Speaking(false)

	return ap.pump(stdout, encoder)
}

// pump reads 20ms PCM frames and forwards encoded Opus until EOF or cancellation.
func (ap *AudioPipeline) pump(reader io.Reader, encoder *gopus.Encoder) error {
	buffer := make([]byte, frameBytes)
	samples := make([]int16, frameSize*channels)

	for {
		_, err := io.ReadFull(reader, buffer)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			if ap.ctx.Err() != nil {
				return ap.ctx.Err()
			}
			return fmt.Errorf("error reading PCM data: %w", err)
		}

		if ap.muted.Load() {
			continue
		}

		pcmToSamples(buffer, samples)
		opus, err := encoder.Encode(samples, frameSize, maxOpusSize)
		if err != nil {
			ap.logger.Warn("opus encoding error", zap.Error(err))
			continue
		}

		select {
		case ap.sink.Frames() <- opus:
		case <-ap.ctx.Done():
			return ap.ctx.Err()
		case <-time.After(time.Second):
			ap.logger.Warn("opus send blocked, dropping frame")
		}
	}
}

// SetMuted drops frames while muted without stopping the decoder.
func (ap *AudioPipeline) SetMuted(muted bool) {
	ap.muted.Store(muted)
}

// Stop cancels the stream and waits for it to finish.
func (ap *AudioPipeline) Stop() {
	ap.cancel()

	ap.mu.Lock()
	playing := ap.isPlaying
	ap.mu.Unlock()

	if playing {
		<-ap.done
	}
}

// Done is closed when a started stream finishes, whether it ran to the end,
// failed or was stopped.
func (ap *AudioPipeline) Done() <-chan struct{} {
	return ap.done
}

// IsPlaying returns whether the pipeline is currently playing
func (ap *AudioPipeline) IsPlaying() bool {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	return ap.isPlaying
}

func pcmToSamples(data []byte, samples []int16) {
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
}
