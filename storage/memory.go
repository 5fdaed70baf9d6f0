package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memoryKey struct {
	owner string
	key   string
}

// Memory is a KV held in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[memoryKey][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[memoryKey][]byte)}
}

func (m *Memory) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memoryKey{owner, key}]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(ctx context.Context, owner, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.data[memoryKey{owner, key}] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, owner, key string) error {
	m.mu.Lock()
	delete(m.data, memoryKey{owner, key})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Append(ctx context.Context, owner, key string, elem []byte) error {
	if !json.Valid(elem) {
		return fmt.Errorf("append %s: element is not valid JSON", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{owner, key}
	next, err := appendJSON(m.data[k], elem)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	m.data[k] = next
	return nil
}
