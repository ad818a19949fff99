package db

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transcription is one recorded tool call.
type Transcription struct {
	ID                string     `json:"id"`
	FilePath          string     `json:"file_path"`
	FileSize          int64      `json:"file_size"`
	Language          string     `json:"language"`
	IncludeTimestamps bool       `json:"include_timestamps"`
	WasChunked        bool       `json:"was_chunked"`
	ChunkCount        int        `json:"chunk_count"`
	Duration          *float64   `json:"duration"`
	Status            Status     `json:"status"`
	Error             string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}
