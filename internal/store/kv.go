package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// KV is a small file-backed key-value store for scalar bookkeeping that lives
// outside the relational store's transaction boundary: the schema-version
// marker and the last-sync timestamp. A missing file reads as empty.
type KV struct {
	path string
	mu   sync.Mutex
}

func NewKV(path string) (*KV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("kv path is required")
	}
	return &KV{path: path}, nil
}

// Get returns the value for key, or "" when the key or the file is absent.
func (kv *KV) Get(key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	values, err := kv.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (kv *KV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	values, err := kv.read()
	if err != nil {
		return err
	}
	values[key] = value
	return kv.write(values)
}

func (kv *KV) Remove(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	values, err := kv.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return kv.write(values)
}

func (kv *KV) read() (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]string{}, nil
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (kv *KV) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(kv.path, append(data, '\n'), 0o644)
}
