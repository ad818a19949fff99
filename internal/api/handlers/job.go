package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/video-stream/whisper-mcp/internal/job"
	"github.com/video-stream/whisper-mcp/internal/storage"
	"github.com/video-stream/whisper-mcp/internal/tool"
)

type JobHandler struct {
	queue *job.Queue
	roots *storage.Roots
}

func NewJobHandler(queue *job.Queue, roots *storage.Roots) *JobHandler {
	return &JobHandler{queue: queue, roots: roots}
}

// CreateJob queues a transcribe_audio call and returns at once. Invalid
// arguments fail the job, the same way they fail a synchronous call.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in tool.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := checkRoots(h.roots, in); err != nil {
		jsonError(w, err.Error(), http.StatusForbidden)
		return
	}

	j, err := h.queue.Enqueue(in)
	if errors.Is(err, job.ErrQueueFull) {
		w.Header().Set("Retry-After", "60")
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		jsonError(w, "failed to queue job: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, j, http.StatusAccepted)
}

// ListJobs returns all jobs, newest first.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, h.queue.List(), http.StatusOK)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.queue.Get(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, j, http.StatusOK)
}

// CancelJob cancels a pending or running job.
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	err := h.queue.Cancel(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, job.ErrNotFound):
		jsonError(w, "job not found", http.StatusNotFound)
	case errors.Is(err, job.ErrFinished):
		jsonError(w, err.Error(), http.StatusConflict)
	case err != nil:
		jsonError(w, "failed to cancel job: "+err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
