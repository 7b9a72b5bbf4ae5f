package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"complaintportal/internal/pkg/logx"
)

// sessionFileName is the file FileKV keeps inside its directory.
const sessionFileName = "session.json"

// FileKV stores all keys in one JSON object on disk. Writes go through a temp file and a
// rename, so a crash never leaves a truncated file behind. A file that does not decode is
// reported by Get and replaced by the next Set or Delete.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a FileKV rooted at dir, creating dir with 0700 permissions.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("storage: file backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create session dir: %w", err)
	}
	return &FileKV{path: filepath.Join(dir, sessionFileName)}, nil
}

// Path returns the session file location.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, _, err := f.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, discarded, err := f.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok && !discarded {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: remove session file: %w", err)
		}
		return nil
	}
	return f.save(values)
}

// loadForWrite is load for callers about to rewrite the file. Undecodable content counts
// as empty so the write replaces it; discarded reports that this happened.
func (f *FileKV) loadForWrite() (values map[string]string, discarded bool, err error) {
	values, err = f.load()
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		logx.Warn("Discarding undecodable session file", "path", f.path, "error", err.Error())
		return make(map[string]string), true, nil
	}
	return values, false, err
}

func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("storage: read session file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("storage: decode session file: %w", err)
	}
	return values, nil
}

func (f *FileKV) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), sessionFileName+".*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: replace session file: %w", err)
	}
	return nil
}
