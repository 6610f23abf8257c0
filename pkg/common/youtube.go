package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// Source is a resolved, streamable audio source.
type Source struct {
	Title     string
	StreamURL string
	PageURL   string
	Duration  time.Duration
}

var ErrNoResults = errors.New("no search results found")

var videoIDPattern = regexp.MustCompile(`[a-zA-Z0-9_-]{11}`)

// IsYouTubeURL checks if a URL appears to be from YouTube
func IsYouTubeURL(urlStr string) bool {
	return strings.Contains(urlStr, "youtube.com") || strings.Contains(urlStr, "youtu.be")
}

// IsURL checks if a string appears to be a URL
func IsURL(str string) bool {
	return strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://") ||
		strings.HasPrefix(str, "www.") || IsYouTubeURL(str)
}

// ExtractYouTubeVideoID extracts the video ID from a YouTube URL
func ExtractYouTubeVideoID(youtubeURL string) string {
	parsedURL, err := url.Parse(youtubeURL)
	if err == nil {
		switch {
		case strings.Contains(parsedURL.Host, "youtu.be"):
			return strings.TrimPrefix(parsedURL.Path, "/")
		case strings.Contains(parsedURL.Host, "youtube.com"):
			if videoID := parsedURL.Query().Get("v"); videoID != "" {
				return videoID
			}
			if _, after, found := strings.Cut(parsedURL.Path, "/embed/"); found {
				return after
			}
			if _, after, found := strings.Cut(parsedURL.Path, "/shorts/"); found {
				return after
			}
		}
	}

	return videoIDPattern.FindString(youtubeURL)
}

// Resolver turns a URL or search keywords into a streamable Source. YouTube
// links go through the native client first; everything else, and any native
// failure, goes through yt-dlp.
type Resolver struct {
	youtube *youtube.Client
	ytdlp   string
	logger  *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		youtube: &youtube.Client{},
		ytdlp:   "yt-dlp",
		logger:  logger,
	}
}

// Resolve implements voice.Resolver.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Source, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty query")
	}

	if !IsURL(query) {
		pageURL, err := r.search(ctx, query)
		if err != nil {
			return nil, err
		}
		query = pageURL
	}

	if IsYouTubeURL(query) {
		src, err := r.resolveYouTube(ctx, query)
		if err == nil {
			return src, nil
		}
		r.logger.Warn("native youtube resolution failed, falling back to yt-dlp",
			zap.String("url", query), zap.Error(err))
	}

	return r.resolveWithYtDlp(ctx, query)
}

func (r *Resolver) resolveYouTube(ctx context.Context, pageURL string) (*Source, error) {
	video, err := r.youtube.GetVideoContext(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video: %w", err)
	}

	format, ok := bestAudioFormat(video.Formats)
	if !ok {
		return nil, fmt.Errorf("video %s has no audio formats", video.ID)
	}

	streamURL, err := r.youtube.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream url: %w", err)
	}

	return &Source{
		Title:     video.Title,
		StreamURL: streamURL,
		PageURL:   pageURL,
		Duration:  video.Duration,
	}, nil
}

// bestAudioFormat picks the highest-bitrate audio-only format, falling back to
// the highest-bitrate format that carries audio at all.
func bestAudioFormat(formats youtube.FormatList) (*youtube.Format, bool) {
	var best *youtube.Format
	bestAudioOnly := false

	withAudio := formats.WithAudioChannels()
	for i := range withAudio {
		f := &withAudio[i]
		audioOnly := strings.HasPrefix(f.MimeType, "audio/")

		switch {
		case best == nil,
			audioOnly && !bestAudioOnly,
			audioOnly == bestAudioOnly && f.Bitrate > best.Bitrate:
			best = f
			bestAudioOnly = audioOnly
		}
	}

	return best, best != nil
}

// search returns the page URL of the first yt-dlp search result.
func (r *Resolver) search(ctx context.Context, query string) (string, error) {
	r.logger.Debug("searching youtube", zap.String("query", query))

	lines, err := r.run(ctx,
		"--no-playlist",
		"--no-warnings",
		"--print", "webpage_url",
		"--max-downloads", "1",
		"ytsearch1:"+query)

	// yt-dlp exits non-zero after hitting --max-downloads, so output wins.
	if len(lines) > 0 && lines[0] != "" {
		return lines[0], nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to search: %w", err)
	}
	return "", ErrNoResults
}

func (r *Resolver) resolveWithYtDlp(ctx context.Context, pageURL string) (*Source, error) {
	lines, err := r.run(ctx,
		"--no-playlist",
		"--no-warnings",
		"-f", "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio",
		"--print", "title",
		"--print", "duration",
		"--print", "urls",
		pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract audio stream: %w", err)
	}
	if len(lines) < 3 || lines[2] == "" {
		return nil, fmt.Errorf("failed to extract audio stream: unexpected output")
	}

	return &Source{
		Title:     lines[0],
		StreamURL: lines[2],
		PageURL:   pageURL,
		Duration:  parseSeconds(lines[1]),
	}, nil
}

func (r *Resolver) run(ctx context.Context, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, r.ytdlp, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		r.logger.Debug("yt-dlp exited with error",
			zap.Error(runErr), zap.String("stderr", strings.TrimSpace(stderr.String())))
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return nil, runErr
	}

	lines := strings.Split(output, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines, runErr
}

// parseSeconds parses yt-dlp's duration field, which is seconds or "NA"/"None".
func parseSeconds(s string) time.Duration {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
