package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoots is returned for paths not under any allowed root.
var ErrOutsideRoots = errors.New("path is outside the allowed audio roots")

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".mp4": true, ".mpeg": true,
	".mpga": true, ".ogg": true, ".oga": true, ".opus": true, ".webm": true,
	".flac": true, ".aac": true, ".wma": true, ".mkv": true, ".mov": true,
}

func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// Roots limits which local files remote callers may name. An empty Roots
// allows every path.
type Roots struct {
	dirs []string // absolute, cleaned
}

func NewRoots(dirs []string) (*Roots, error) {
	r := &Roots{}
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("audio root %q: %w", d, err)
		}
		r.dirs = append(r.dirs, abs)
	}
	return r, nil
}

func (r *Roots) Restricted() bool {
	return r != nil && len(r.dirs) > 0
}

func (r *Roots) Dirs() []string {
	if r == nil {
		return nil
	}
	return r.dirs
}

// Allowed reports whether path lies under one of the roots. Symlinks are
// resolved first so a link cannot point outside.
func (r *Roots) Allowed(path string) error {
	if !r.Restricted() {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs, err = resolve(abs)
	if err != nil {
		return err
	}
	for _, dir := range r.dirs {
		base := dir
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			base = resolved
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return ErrOutsideRoots
}

// resolve follows symlinks in path. A missing final element is allowed.
func resolve(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	return filepath.Join(dir, filepath.Base(path)), nil
}
