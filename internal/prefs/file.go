package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one scope of a JSON document readable only by its owner.
// The document maps scope names to their entries, so several scopes can
// share a file without overwriting each other.
type FileStore struct {
	mu    *sync.Mutex
	path  string
	scope string
}

// pathLocks serialises read-modify-write cycles of stores sharing a file.
var pathLocks sync.Map

func NewFileStore(path, scope string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs: file path is required")
	}
	if scope == "" {
		return nil, fmt.Errorf("prefs: scope is required")
	}
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	mu, _ := pathLocks.LoadOrStore(key, &sync.Mutex{})
	return &FileStore{mu: mu.(*sync.Mutex), path: path, scope: scope}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Snapshot(ctx context.Context) (Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	v := doc[s.scope]
	if v == nil {
		v = Values{}
	}
	return v, nil
}

func (s *FileStore) Commit(ctx context.Context, e *Edit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		if !e.clear {
			return err
		}
		// A full clear of an unreadable file discards it.
		doc = map[string]Values{}
	}
	next := e.apply(doc[s.scope])
	if len(next) == 0 {
		delete(doc, s.scope)
	} else {
		doc[s.scope] = next
	}
	if len(doc) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("prefs: remove %s: %w", s.path, err)
		}
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("prefs: marshal: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'), 0600)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) readLocked() (map[string]Values, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Values{}, nil
		}
		return nil, fmt.Errorf("prefs: read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return map[string]Values{}, nil
	}
	var doc map[string]Values
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("prefs: decode %s: %w", s.path, err)
	}
	if doc == nil {
		doc = map[string]Values{}
	}
	return doc, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("prefs: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("prefs: replace %s: %w", path, err)
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
