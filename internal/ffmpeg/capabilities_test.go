package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptedRunner fails any command whose name plus args contains one of
// the listed substrings.
type scriptedRunner struct {
	failOn []string
	calls  int
}

func (s *scriptedRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	s.calls++
	line := name + " " + strings.Join(args, " ")
	for _, f := range s.failOn {
		if strings.Contains(line, f) {
			return Output{}, errors.New("command failed: " + line)
		}
	}
	return Output{}, nil
}

func TestDetectCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		failOn    []string
		want      Capabilities
		wantCalls int
	}{
		{"all present", nil, Capabilities{FFprobe: true, FFmpeg: true, MP3Encoder: true}, 3},
		{"no ffprobe", []string{"ffprobe"}, Capabilities{FFmpeg: true, MP3Encoder: true}, 3},
		{"no ffmpeg", []string{"ffmpeg -version"}, Capabilities{FFprobe: true}, 2},
		{"no lame", []string{"libmp3lame"}, Capabilities{FFprobe: true, FFmpeg: true}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &scriptedRunner{failOn: tt.failOn}
			got := DetectCapabilities(context.Background(), r, "ffprobe", "ffmpeg", nil)
			if got != tt.want {
				t.Errorf("DetectCapabilities() = %+v, want %+v", got, tt.want)
			}
			if got.Splitting() != (tt.want == Capabilities{FFprobe: true, FFmpeg: true, MP3Encoder: true}) {
				t.Errorf("Splitting() = %v", got.Splitting())
			}
			if r.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", r.calls, tt.wantCalls)
			}
		})
	}
}
