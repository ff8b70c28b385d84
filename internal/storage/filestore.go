package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists one JSON file per record id under a single directory.
// Saves go through a temp file and rename so a crash mid-write never leaves
// a truncated record behind.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at the given directory, creating
// the directory if it does not exist
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// path maps a record id to its on-disk file name. Path separators are
// rejected so an id cannot escape the store directory.
func (fs *FileStore) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("record id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid record id %q", id)
	}
	return filepath.Join(fs.dir, id+".json"), nil
}

// Load returns the record for the given id, or ErrNotFound
func (fs *FileStore) Load(id string) ([]byte, error) {
	p, err := fs.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	return data, nil
}

// Save writes the record for the given id as a whole-record replace
func (fs *FileStore) Save(id string, data []byte) error {
	p, err := fs.path(id)
	if err != nil {
		return err
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}

	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace record %s: %w", id, err)
	}

	return nil
}

// Delete removes the record for the given id, or returns ErrNotFound
func (fs *FileStore) Delete(id string) error {
	p, err := fs.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	return nil
}

// List returns the ids of all stored records
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}
