package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the single durable slot holding the serialized item sequence.
// It is read once at startup and overwritten wholesale on every mutation.
type Store interface {
	Load() ([]CollectedItem, error)
	Save(items []CollectedItem) error
}

// FileStore keeps the item sequence as a JSON file. Writes go through a
// temp file and a rename so the slot is always the previous valid
// sequence or the new one, never a partial write.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() ([]CollectedItem, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			// No persisted data yet is not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("read queue file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []CollectedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode queue file: %w", err)
	}
	return items, nil
}

func (s *FileStore) Save(items []CollectedItem) error {
	if items == nil {
		items = []CollectedItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp queue file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp queue file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp queue file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace queue file: %w", err)
	}
	return nil
}
