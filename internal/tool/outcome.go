package tool

import (
	"encoding/json"

	"github.com/video-stream/whisper-mcp/internal/transcribe"
)

type Metadata struct {
	Language   string   `json:"language"`
	Duration   *float64 `json:"duration"`
	FilePath   string   `json:"filePath"`
	FileSize   int64    `json:"fileSize"`
	WasChunked bool     `json:"wasChunked"`
}

// Payload is the success body. Segments is left out entirely unless
// timestamps were requested; when requested it is always an array.
type Payload struct {
	Transcript string               `json:"transcript"`
	Segments   []transcribe.Segment `json:"segments,omitzero"`
	Metadata   Metadata             `json:"metadata"`
}

// Outcome is either a Payload or an error message. Both are ordinary
// results of a tool call.
type Outcome struct {
	IsError bool
	Message string
	Payload *Payload
	// ID of the history record, when history is enabled.
	ID string
}

// Text renders the outcome as the tool's text content: indented JSON on
// success, the message on error.
func (o Outcome) Text() string {
	if o.IsError {
		return o.Message
	}
	b, err := json.MarshalIndent(o.Payload, "", "  ")
	if err != nil {
		return errorPrefix + err.Error()
	}
	return string(b)
}
