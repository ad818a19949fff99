package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ProbeTimeout bounds a single ffprobe invocation.
const ProbeTimeout = 10 * time.Second

var (
	ErrProbeTimeout = errors.New("ffprobe timed out")
	// ErrNoDuration means ffprobe ran but did not print a usable number.
	ErrNoDuration = errors.New("ffprobe returned no duration")
)

// Prober reads the container duration of a media file.
type Prober struct {
	runner Runner
	bin    string
}

func NewProber(runner Runner, ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{runner: runner, bin: ffprobePath}
}

// Duration returns the duration in seconds from the format metadata,
// without decoding the audio.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Run(ctx, ProbeTimeout, p.bin,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return 0, fmt.Errorf("%w: %w", ErrProbeTimeout, err)
		}
		return 0, err
	}
	return parseDuration(out.Stdout)
}

func parseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, s)
	}
	return d, nil
}
