package storage

import (
	"os"
	"path/filepath"
	"strings"
)

type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"` // absolute, ready to pass as file_path
	Size int64  `json:"size"`
}

// Search walks the roots for audio files whose name contains query
// (case-insensitive). Hidden files and directories are skipped.
func (r *Roots) Search(query string, maxResults int) ([]*FileEntry, error) {
	query = strings.ToLower(query)
	results := []*FileEntry{}

	for _, base := range r.Dirs() {
		err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if len(results) >= maxResults {
				return filepath.SkipAll
			}
			if strings.HasPrefix(info.Name(), ".") && path != base {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() || !IsAudioFile(info.Name()) {
				return nil
			}
			if strings.Contains(strings.ToLower(info.Name()), query) {
				results = append(results, &FileEntry{
					Name: info.Name(),
					Path: path,
					Size: info.Size(),
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
