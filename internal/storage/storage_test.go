package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootsAllowed(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	touch(t, filepath.Join(root, "aulas", "a.mp3"))
	touch(t, filepath.Join(other, "b.mp3"))
	if err := os.Symlink(filepath.Join(other, "b.mp3"), filepath.Join(root, "link.mp3")); err != nil {
		t.Fatal(err)
	}

	r, err := NewRoots([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		ok   bool
	}{
		{filepath.Join(root, "aulas", "a.mp3"), true},
		{filepath.Join(root, "not-yet.wav"), true},
		{filepath.Join(root, "..", filepath.Base(other), "b.mp3"), false},
		{filepath.Join(other, "b.mp3"), false},
		{filepath.Join(root, "link.mp3"), false},
		{root + "-sibling/x.mp3", false},
	}
	for _, tt := range tests {
		err := r.Allowed(tt.path)
		if tt.ok && err != nil {
			t.Errorf("Allowed(%s) error = %v", tt.path, err)
		}
		if !tt.ok && !errors.Is(err, ErrOutsideRoots) {
			t.Errorf("Allowed(%s) error = %v, want ErrOutsideRoots", tt.path, err)
		}
	}
}

func TestUnrestrictedRoots(t *testing.T) {
	var nilRoots *Roots
	empty, _ := NewRoots(nil)
	for _, r := range []*Roots{nilRoots, empty} {
		if r.Restricted() {
			t.Error("Restricted() = true")
		}
		if err := r.Allowed("/etc/anything.mp3"); err != nil {
			t.Errorf("Allowed() error = %v", err)
		}
	}
}

func TestSearch(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Aula-01.mp3"))
	touch(t, filepath.Join(root, "sub", "aula-02.M4A"))
	touch(t, filepath.Join(root, "aula-notes.txt"))
	touch(t, filepath.Join(root, ".hidden", "aula-03.mp3"))
	touch(t, filepath.Join(root, "other.wav"))

	r, _ := NewRoots([]string{root})
	got, err := r.Search("aula", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() = %d results, want 2: %+v", len(got), got)
	}
	for _, f := range got {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Path %q not absolute", f.Path)
		}
	}

	limited, _ := r.Search("", 1)
	if len(limited) != 1 {
		t.Errorf("maxResults ignored: %d results", len(limited))
	}
}
