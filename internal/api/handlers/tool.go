package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/video-stream/whisper-mcp/internal/storage"
	"github.com/video-stream/whisper-mcp/internal/tool"
)

// Caller runs one transcribe_audio call.
type Caller interface {
	Call(ctx context.Context, in tool.Input) tool.Outcome
}

type ToolHandler struct {
	caller     Caller
	definition mcp.Tool
	roots      *storage.Roots
}

// NewToolHandler serves caller over HTTP. Only files under roots may be
// named; nil roots allows any path.
func NewToolHandler(caller Caller, definition mcp.Tool, roots *storage.Roots) *ToolHandler {
	return &ToolHandler{caller: caller, definition: definition, roots: roots}
}

// ListTools describes the tools callable over HTTP.
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{"tools": []mcp.Tool{h.definition}}, http.StatusOK)
}

// checkRoots rejects paths outside roots. An empty path is left to the tool,
// which reports it in-band.
func checkRoots(roots *storage.Roots, in tool.Input) error {
	if in.FilePath == "" {
		return nil
	}
	return roots.Allowed(in.FilePath)
}

type callResponse struct {
	IsError bool          `json:"is_error"`
	Result  *tool.Payload `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
	ID      string        `json:"id,omitempty"`
}

// CallTranscribe runs transcribe_audio. Tool failures are part of a normal
// 200 response; only a malformed request is rejected.
func (h *ToolHandler) CallTranscribe(w http.ResponseWriter, r *http.Request) {
	var in tool.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := checkRoots(h.roots, in); err != nil {
		jsonError(w, err.Error(), http.StatusForbidden)
		return
	}

	out := h.caller.Call(r.Context(), in)
	jsonResponse(w, callResponse{
		IsError: out.IsError,
		Result:  out.Payload,
		Error:   out.Message,
		ID:      out.ID,
	}, http.StatusOK)
}
