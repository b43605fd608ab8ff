package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV stores every key in one JSON object on disk. Writes go to a
// temp file that is renamed over the old one, so a crash never leaves a
// half-written state file.
type FileKV struct {
	path string
	mu   sync.Mutex
}

func NewFileKV(path string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("store: empty state file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create state dir: %w", err)
	}
	return &FileKV{path: path}, nil
}

func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		// a corrupt state file is replaced rather than blocking every write
		data = map[string]string{}
	}
	data[key] = value
	return f.write(data)
}

func (f *FileKV) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}
	data := map[string]string{}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileKV) write(data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", f.path, err)
	}
	return nil
}
