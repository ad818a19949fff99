package transcribe

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxUploadSize is the backend's hard upload limit. Files above it are
	// split by time.
	MaxUploadSize = 25 * 1024 * 1024

	// ChunkSeconds is the fixed window length. It assumes a roughly uniform
	// bitrate; a very dense file can still yield chunks over MaxUploadSize.
	ChunkSeconds = 600.0

	// MaxChunks bounds a plan. Durations beyond it come from corrupt
	// containers, not real recordings.
	MaxChunks = 10000
)

var ErrUnknownDuration = errors.New("audio duration unavailable")

// ChunkPlan is one time window of the source file.
type ChunkPlan struct {
	Index  int
	Offset float64 // seconds from the start of the source
}

// NeedsSplit reports whether a file of size bytes must go through
// split-and-merge.
func NeedsSplit(size int64) bool {
	return size > MaxUploadSize
}

// PlanChunks covers [0, duration) with ChunkSeconds windows.
func PlanChunks(duration float64) ([]ChunkPlan, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, fmt.Errorf("%w: %v seconds", ErrUnknownDuration, duration)
	}
	if duration/ChunkSeconds > MaxChunks {
		return nil, fmt.Errorf("%w: %v seconds exceeds %d chunks", ErrUnknownDuration, duration, MaxChunks)
	}
	n := int(math.Ceil(duration / ChunkSeconds))
	plan := make([]ChunkPlan, n)
	for i := range plan {
		plan[i] = ChunkPlan{Index: i, Offset: float64(i) * ChunkSeconds}
	}
	return plan, nil
}
