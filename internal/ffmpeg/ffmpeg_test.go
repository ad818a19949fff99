package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	out     Output
	err     error
	name    string
	args    []string
	timeout time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	f.name = name
	f.args = args
	f.timeout = timeout
	return f.out, f.err
}

func TestProberDuration(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    float64
		wantErr error
	}{
		{"plain", "300.0\n", 300, nil},
		{"fractional", " 1499.512000 \n", 1499.512, nil},
		{"not available", "N/A\n", 0, ErrNoDuration},
		{"empty", "", 0, ErrNoDuration},
		{"nan", "nan", 0, ErrNoDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{out: Output{Stdout: tt.stdout}}
			got, err := NewProber(r, "").Duration(context.Background(), "/audio/in.m4a")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Duration() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProberArgs(t *testing.T) {
	r := &fakeRunner{out: Output{Stdout: "12.5"}}
	if _, err := NewProber(r, "/opt/bin/ffprobe").Duration(context.Background(), "/audio/in.m4a"); err != nil {
		t.Fatal(err)
	}
	if r.name != "/opt/bin/ffprobe" {
		t.Errorf("binary = %q, want /opt/bin/ffprobe", r.name)
	}
	if r.timeout != ProbeTimeout {
		t.Errorf("timeout = %v, want %v", r.timeout, ProbeTimeout)
	}
	want := "-v quiet -show_entries format=duration -of csv=p=0 /audio/in.m4a"
	if got := strings.Join(r.args, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestProberTimeout(t *testing.T) {
	r := &fakeRunner{err: &CommandError{Command: "ffprobe", Err: ErrTimeout}}
	_, err := NewProber(r, "").Duration(context.Background(), "/audio/in.m4a")
	if !errors.Is(err, ErrProbeTimeout) {
		t.Fatalf("Duration() error = %v, want ErrProbeTimeout", err)
	}
}

func TestSegmenterArgs(t *testing.T) {
	r := &fakeRunner{}
	err := NewSegmenter(r, "").Extract(context.Background(), "/audio/long.wav", 1200, 600, "/tmp/wd/chunk_2.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if r.name != "ffmpeg" {
		t.Errorf("binary = %q, want ffmpeg", r.name)
	}
	if r.timeout != SegmentTimeout {
		t.Errorf("timeout = %v, want %v", r.timeout, SegmentTimeout)
	}
	args := strings.Join(r.args, " ")
	for _, want := range []string{
		"-i /audio/long.wav",
		"-ss 1200",
		"-t 600",
		"-vn",
		"-acodec libmp3lame",
		"-y /tmp/wd/chunk_2.mp3",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestSegmenterTimeout(t *testing.T) {
	r := &fakeRunner{err: &CommandError{Command: "ffmpeg", Err: ErrTimeout}}
	err := NewSegmenter(r, "").Extract(context.Background(), "/a.wav", 0, 600, "/b.mp3")
	if !errors.Is(err, ErrSegmentTimeout) {
		t.Fatalf("Extract() error = %v, want ErrSegmentTimeout", err)
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	out, err := ExecRunner{}.Run(context.Background(), time.Second, "sh", "-c", "printf 42.5")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Stdout != "42.5" {
		t.Errorf("Stdout = %q, want 42.5", out.Stdout)
	}
}

func TestExecRunnerFoldsStderr(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), time.Second, "sh", "-c", "echo 'no such file' >&2; exit 3")
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "command failed: sh -c") {
		t.Errorf("message = %q, want command prefix", msg)
	}
	if !strings.Contains(msg, "no such file") {
		t.Errorf("message = %q, want stderr folded in", msg)
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	start := time.Now()
	_, err := ExecRunner{}.Run(context.Background(), 100*time.Millisecond, "sh", "-c", "sleep 5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run() took %v, want prompt kill", elapsed)
	}
}

func TestExecRunnerCallerDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := ExecRunner{}.Run(ctx, 10*time.Second, "sh", "-c", "sleep 5")
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want the caller's deadline, not ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("Run() error = %T, want *CommandError", err)
	}
}

func TestExecRunnerOutputLimit(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), 10*time.Second, "sh", "-c", "head -c 52428900 /dev/zero")
	if !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("Run() error = %v, want ErrOutputLimit", err)
	}
}

func TestCappedBuffer(t *testing.T) {
	fired := 0
	b := &cappedBuffer{limit: 4, onOverflow: func() { fired++ }}
	if n, err := b.Write([]byte("ab")); n != 2 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if _, err := b.Write([]byte("cdef")); !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("Write() error = %v, want ErrOutputLimit", err)
	}
	if _, err := b.Write([]byte("g")); !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("Write() after overflow error = %v", err)
	}
	if b.String() != "abcd" {
		t.Errorf("String() = %q, want abcd", b.String())
	}
	if fired != 1 {
		t.Errorf("onOverflow fired %d times, want 1", fired)
	}
}
