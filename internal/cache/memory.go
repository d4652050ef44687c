// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// Memory is an in-process Cache. Expired entries are dropped on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	// now is the clock; tests replace it.
	now func() time.Time
}

// NewMemory returns an empty Memory cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if m.now().Sub(e.storedAt) >= m.ttl {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache. The value is copied.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.entries[key] = entry{value: v, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}
