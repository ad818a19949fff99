package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// MaxOutputBytes caps stdout and stderr of a child process.
	MaxOutputBytes = 50 * 1024 * 1024

	defaultTimeout = 300 * time.Second
)

var (
	ErrTimeout     = errors.New("timed out")
	ErrOutputLimit = errors.New("output exceeds 50 MiB")
)

// CommandError is returned when a child process fails, times out or
// overflows its output buffer.
type CommandError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("command failed: %s %s\n%s", e.Command, strings.Join(e.Args, " "), detail)
}

func (e *CommandError) Unwrap() error { return e.Err }

type Output struct {
	Stdout string
	Stderr string
}

// Runner executes an external binary with a wall-clock timeout.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	parent := ctx
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	stdout := &cappedBuffer{limit: MaxOutputBytes, onOverflow: cancel}
	stderr := &cappedBuffer{limit: MaxOutputBytes, onOverflow: cancel}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	switch {
	case stdout.overflowed || stderr.overflowed:
		err = ErrOutputLimit
	case parent.Err() != nil:
		err = parent.Err()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return out, &CommandError{Command: name, Args: args, Stderr: out.Stderr, Err: err}
}

// cappedBuffer stops accepting data past limit and fires onOverflow once.
type cappedBuffer struct {
	buf        bytes.Buffer
	limit      int
	overflowed bool
	onOverflow func()
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.overflowed {
		return 0, ErrOutputLimit
	}
	if room := b.limit - b.buf.Len(); len(p) > room {
		b.buf.Write(p[:room])
		b.overflowed = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return room, ErrOutputLimit
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string { return b.buf.String() }
