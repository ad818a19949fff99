package job

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"

	"github.com/video-stream/whisper-mcp/internal/tool"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrQueueFull = errors.New("job queue is full")
	ErrFinished  = errors.New("job already finished")
)

// Job is a transcribe_audio call run in the background.
type Job struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Input       tool.Input    `json:"input"`
	Result      *tool.Payload `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	HistoryID   string        `json:"history_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	state *fsm.FSM
}

const (
	eventStart    = "start"
	eventComplete = "complete"
	eventFail     = "fail"
	eventCancel   = "cancel"
)

func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(string(StatusPending), fsm.Events{
		{Name: eventStart, Src: []string{string(StatusPending)}, Dst: string(StatusRunning)},
		{Name: eventComplete, Src: []string{string(StatusRunning)}, Dst: string(StatusCompleted)},
		{Name: eventFail, Src: []string{string(StatusRunning)}, Dst: string(StatusFailed)},
		{Name: eventCancel, Src: []string{string(StatusPending), string(StatusRunning)}, Dst: string(StatusCancelled)},
	}, fsm.Callbacks{})
}

// transition fires event and mirrors the new state into Status.
func (j *Job) transition(event string) error {
	if err := j.state.Event(context.Background(), event); err != nil {
		return err
	}
	j.Status = Status(j.state.Current())
	return nil
}

func (j *Job) finished() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Caller runs one tool call.
type Caller interface {
	Call(ctx context.Context, in tool.Input) tool.Outcome
}
