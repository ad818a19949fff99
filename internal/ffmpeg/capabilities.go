package ffmpeg

import (
	"context"
	"time"

	"github.com/video-stream/whisper-mcp/internal/logger"
)

const detectTimeout = 10 * time.Second

// Capabilities reports which media tools the splitting path can rely on.
// Files under the upload limit never need them.
type Capabilities struct {
	FFprobe    bool `json:"ffprobe"`
	FFmpeg     bool `json:"ffmpeg"`
	MP3Encoder bool `json:"libmp3lame"`
}

// Splitting reports whether large files can be chunked.
func (c Capabilities) Splitting() bool {
	return c.FFprobe && c.FFmpeg && c.MP3Encoder
}

// DetectCapabilities checks the configured binaries once at startup.
func DetectCapabilities(ctx context.Context, runner Runner, ffprobePath, ffmpegPath string, log *logger.Logger) Capabilities {
	if log == nil {
		log = logger.Nop()
	}
	var caps Capabilities

	if _, err := runner.Run(ctx, detectTimeout, ffprobePath, "-version"); err != nil {
		log.Warnf("[ffmpeg] %s unavailable: %v", ffprobePath, err)
	} else {
		caps.FFprobe = true
	}

	if _, err := runner.Run(ctx, detectTimeout, ffmpegPath, "-version"); err != nil {
		log.Warnf("[ffmpeg] %s unavailable: %v", ffmpegPath, err)
		return caps
	}
	caps.FFmpeg = true

	// A one-frame encode catches builds without libmp3lame.
	_, err := runner.Run(ctx, detectTimeout, ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "anullsrc=r=16000:cl=mono",
		"-t", "0.1",
		"-acodec", "libmp3lame",
		"-f", "null", "-",
	)
	if err != nil {
		log.Warnf("[ffmpeg] libmp3lame encoder unavailable: %v", err)
	} else {
		caps.MP3Encoder = true
	}

	if !caps.Splitting() {
		log.Warn("[ffmpeg] files over the upload limit cannot be split")
	}
	return caps
}
