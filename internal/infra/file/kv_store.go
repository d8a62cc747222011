package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// KVStore persists string values in a small YAML document on disk, the
// terminal counterpart of browser-local storage.
type KVStore struct {
	path string
	mu   sync.Mutex
}

func NewKVStore(path string) *KVStore {
	return &KVStore{path: path}
}

// DefaultPath is ~/.quizmaster/profile.yaml, or a relative path when no home is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".quizmaster", "profile.yaml")
	}
	return filepath.Join(home, ".quizmaster", "profile.yaml")
}

func (s *KVStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *KVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *KVStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}
