package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/video-stream/whisper-mcp/internal/logger"
)

const prefix = "mcp-openai-whisper-"

// WorkDir is a scratch directory owned by exactly one tool call.
type WorkDir struct {
	Path   string
	logger *logger.Logger
}

// Create makes a fresh, uniquely named directory under root (os.TempDir()
// when root is empty).
func Create(root string, log *logger.Logger) (*WorkDir, error) {
	if root == "" {
		root = os.TempDir()
	}
	if log == nil {
		log = logger.Nop()
	}
	path := filepath.Join(root, prefix+uuid.NewString())
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &WorkDir{Path: path, logger: log}, nil
}

// Release removes the directory and everything in it. Failures are logged
// and otherwise ignored so they never replace the call's real outcome.
func (w *WorkDir) Release() {
	if err := os.RemoveAll(w.Path); err != nil {
		w.logger.Warnf("[workdir] cleanup of %s failed: %v", w.Path, err)
	}
}
