// Package storage is a small persisted key-value store. All values live in a
// single JSON document, addressed by top-level key, and are written back to
// disk on every Save when the store has a path.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	doc  []byte
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{doc: []byte("{}")}
}

// Open loads the document at path, creating an empty one when the file does
// not exist. An empty path is the same as NewMemory.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewMemory(), nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = []byte("{}")
	case err != nil:
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	case !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject():
		return nil, fmt.Errorf("store %s: not a JSON object", path)
	}

	return &Store{path: path, doc: data}, nil
}

// Path returns the backing file, or "" for a memory store.
func (s *Store) Path() string { return s.path }

// Load decodes the value stored under key into dst. It reports false when the
// key is absent. A value that no longer decodes into dst is reported as an
// error so callers can fall back to defaults.
func (s *Store) Load(key string, dst any) (bool, error) {
	s.mu.Lock()
	res := gjson.GetBytes(s.doc, escapeKey(key))
	s.mu.Unlock()

	if !res.Exists() {
		return false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), dst); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// Save stores v under key and persists the document.
func (s *Store) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.SetRawBytes(s.doc, escapeKey(key), raw)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	if err := s.flush(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.DeleteBytes(s.doc, escapeKey(key))
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	if err := s.flush(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Keys lists the stored top-level keys in document order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	gjson.ParseBytes(s.doc).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

// flush writes doc to a temp file next to path and renames it into place.
func (s *Store) flush(doc []byte) error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

// escapeKey makes key a literal single-segment gjson/sjson path.
func escapeKey(key string) string {
	return pathEscaper.Replace(key)
}
