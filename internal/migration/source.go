package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Source yields the raw JSON stored under a legacy key. A missing key
// returns (nil, nil).
type Source interface {
	Load(key string) ([]byte, error)
}

// FileSource reads a JSON object dump of the legacy key/value storage.
// Values may be JSON documents or JSON strings holding a document.
type FileSource struct {
	values map[string]json.RawMessage
}

func OpenFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legacy export: %w", err)
	}
	return NewFileSource(data)
}

func NewFileSource(data []byte) (*FileSource, error) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode legacy export: %w", err)
	}
	return &FileSource{values: values}, nil
}

func (f *FileSource) Load(key string) ([]byte, error) {
	raw, ok := f.values[key]
	if !ok {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '"' {
		return raw, nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if inner == "" {
		return nil, nil
	}
	return []byte(inner), nil
}
