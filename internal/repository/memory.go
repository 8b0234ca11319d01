package repository

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	labels    []string
	expiresAt time.Time
}

// MemorySlotCache is the in-process fallback when Redis is unreachable.
type MemorySlotCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemorySlotCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.labels, true, nil
}

func (m *MemorySlotCache) Set(ctx context.Context, key string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{labels: labels, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemorySlotCache) InvalidateDate(ctx context.Context, salonID int64, date string) error {
	prefix := datePrefix(salonID, date)
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}
