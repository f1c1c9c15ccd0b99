package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileStore persists the ledger as an indented JSON document, readable enough
// to diff by hand when a run goes sideways.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The file is created on first
// Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the ledger document. A missing file yields an empty
// document rather than an error so a first run can start from nothing.
func (s *FileStore) Load(ctx context.Context) (Document, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("ledger: decode %s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes the document atomically: encode to a temp file in the same
// directory, then rename over the target.
func (s *FileStore) Save(ctx context.Context, doc Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("ledger: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ledger: rename %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
