package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/tool"
)

const (
	DefaultCapacity = 100
	// maxRetained bounds how many finished jobs stay queryable.
	maxRetained = 1000
)

// Queue runs jobs one at a time, in submission order. Jobs live in memory
// only; the transcription history is the durable record.
type Queue struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	order   []string // oldest first
	pending chan string
	cancels map[string]context.CancelFunc
	caller  Caller
	logger  *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewQueue starts a queue whose worker runs until ctx is done or Stop is
// called.
func NewQueue(ctx context.Context, caller Caller, capacity int, log *logger.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	q := &Queue{
		jobs:    make(map[string]*Job),
		pending: make(chan string, capacity),
		cancels: make(map[string]context.CancelFunc),
		caller:  caller,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go q.worker()
	return q
}

// Enqueue records a pending job for in.
func (q *Queue) Enqueue(in tool.Input) (*Job, error) {
	j := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Input:     in,
		CreatedAt: time.Now(),
		state:     newLifecycle(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.pending <- j.ID:
	default:
		return nil, ErrQueueFull
	}
	q.jobs[j.ID] = j
	q.order = append(q.order, j.ID)
	q.prune()

	q.logger.Infof("[job] queued %s for %s", j.ID, in.FilePath)
	snap := *j
	return &snap, nil
}

// Get returns a snapshot of the job.
func (q *Queue) Get(id string) (*Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	j, ok := q.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	snap := *j
	return &snap, nil
}

// List returns snapshots of all known jobs, newest first.
func (q *Queue) List() []*Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Job, 0, len(q.order))
	for i := len(q.order) - 1; i >= 0; i-- {
		snap := *q.jobs[q.order[i]]
		out = append(out, &snap)
	}
	return out
}

// Cancel stops a pending or running job. A running job's work dir is still
// removed by the tool before the job settles.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if err := j.transition(eventCancel); err != nil {
		return ErrFinished
	}
	if cancelFn, ok := q.cancels[id]; ok {
		cancelFn()
	}
	now := time.Now()
	j.CompletedAt = &now
	q.logger.Infof("[job] job %s cancelled", id)
	return nil
}

// Stop cancels the running job and waits for the worker to exit. Pending
// jobs stay pending.
func (q *Queue) Stop() {
	q.cancel()
	<-q.done
}

func (q *Queue) worker() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			return
		case id := <-q.pending:
			q.process(id)
		}
	}
}

func (q *Queue) process(id string) {
	q.mu.Lock()
	j, ok := q.jobs[id]
	if !ok || j.transition(eventStart) != nil {
		q.mu.Unlock()
		return
	}
	ctx, cancelFn := context.WithCancel(q.ctx)
	now := time.Now()
	j.StartedAt = &now
	q.cancels[id] = cancelFn
	in := j.Input
	q.mu.Unlock()

	out := q.call(ctx, id, in)
	cancelFn()

	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.cancels, id)
	j.HistoryID = out.ID
	if j.Status == StatusCancelled {
		return
	}
	done := time.Now()
	j.CompletedAt = &done
	if out.IsError {
		j.transition(eventFail)
		j.Error = out.Message
		q.logger.Warnf("[job] job %s failed: %s", id, out.Message)
		return
	}
	j.transition(eventComplete)
	j.Result = out.Payload
	q.logger.Infof("[job] job %s completed", id)
}

// call shields the worker from a panicking caller; the job fails instead.
func (q *Queue) call(ctx context.Context, id string, in tool.Input) (out tool.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Errorf("[job] job %s panicked: %v", id, r)
			out = tool.Outcome{IsError: true, Message: fmt.Sprintf("Failed to transcribe audio: internal error: %v", r)}
		}
	}()
	return q.caller.Call(ctx, in)
}

// prune drops the oldest finished jobs beyond maxRetained. Callers hold mu.
func (q *Queue) prune() {
	excess := len(q.order) - maxRetained
	if excess <= 0 {
		return
	}
	kept := q.order[:0]
	for _, id := range q.order {
		if excess > 0 && q.jobs[id].finished() {
			delete(q.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	q.order = kept
}
