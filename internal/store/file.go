package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileKV is a string key/value store persisted as one JSON object on disk,
// the local equivalent of browser localStorage.
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Get returns the value for key and whether it was present.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.readLocked()
	if err != nil {
		return err
	}
	values[key] = value
	return writeJSONAtomic(f.path, values, 0o600)
}

func (f *FileKV) readLocked() (map[string]string, error) {
	values := map[string]string{}
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// FileSubmissionStore appends contact submissions to a JSON array file.
type FileSubmissionStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSubmissionStore(path string) *FileSubmissionStore {
	return &FileSubmissionStore{path: path}
}

// Load returns all stored submissions. A missing or unreadable file yields an
// empty list.
func (f *FileSubmissionStore) Load() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

func (f *FileSubmissionStore) SaveSubmission(_ context.Context, sub Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := append(f.loadLocked(), sub)
	return writeJSONAtomic(f.path, subs, 0o644)
}

func (f *FileSubmissionStore) loadLocked() []Submission {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("[store] reading submissions failed", "path", f.path, "error", err)
		}
		return []Submission{}
	}
	var subs []Submission
	if err := json.Unmarshal(b, &subs); err != nil {
		slog.Warn("[store] submissions file is corrupt, starting fresh", "path", f.path, "error", err)
		return []Submission{}
	}
	return subs
}

func writeJSONAtomic(path string, v any, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
