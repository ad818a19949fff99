package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SegmentTimeout bounds the extraction of one chunk.
const SegmentTimeout = 60 * time.Second

var ErrSegmentTimeout = errors.New("ffmpeg segment timed out")

// Segmenter cuts time windows out of a media file into standalone MP3s.
type Segmenter struct {
	runner Runner
	bin    string
}

func NewSegmenter(runner Runner, ffmpegPath string) *Segmenter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Segmenter{runner: runner, bin: ffmpegPath}
}

// Extract writes [offset, offset+length) of src to dst, audio only,
// re-encoded as MP3. dst is overwritten. A window running past the end of
// the input just yields a shorter file.
func (s *Segmenter) Extract(ctx context.Context, src string, offset, length float64, dst string) error {
	_, err := s.runner.Run(ctx, SegmentTimeout, s.bin,
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-ss", formatSeconds(offset),
		"-t", formatSeconds(length),
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "5",
		"-y",
		dst,
	)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return fmt.Errorf("%w: %w", ErrSegmentTimeout, err)
		}
		return err
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
