package cache

import (
	"context"
	"sync"
	"time"
)

// TTLEntry represents an entry in TTLMap
type TTLEntry struct {
	Value      interface{}
	ExpiresAt  time.Time
	LastAccess time.Time
}

type TTLOption func(*TTLMap)

// WithMaxEntries caps the map. When full, the least recently used entry that
// is not pinned makes room.
func WithMaxEntries(n int) TTLOption {
	return func(m *TTLMap) {
		m.maxEntries = n
	}
}

// WithPinned marks values that must never be evicted, expired or not.
func WithPinned(fn func(value interface{}) bool) TTLOption {
	return func(m *TTLMap) {
		m.pinned = fn
	}
}

// WithOnEvict is called, outside the lock, for every evicted entry.
func WithOnEvict(fn func(key string, value interface{})) TTLOption {
	return func(m *TTLMap) {
		m.onEvict = fn
	}
}

// TTLMap is a thread-safe map with a sliding TTL: every read or write of an
// entry pushes its expiry forward.
type TTLMap struct {
	data       map[string]*TTLEntry
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	pinned     func(value interface{}) bool
	onEvict    func(key string, value interface{})
	now        func() time.Time
}

// NewTTLMap creates a new TTLMap with the specified TTL
func NewTTLMap(ttl time.Duration, opts ...TTLOption) *TTLMap {
	m := &TTLMap{
		data: make(map[string]*TTLEntry),
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves a value from the TTLMap if it hasn't expired
func (m *TTLMap) Get(key string) (interface{}, bool) {
	return m.GetAndHold(key, nil)
}

// GetAndHold is Get with hold applied to the value before the map lock is
// released. hold must not call back into the map.
func (m *TTLMap) GetAndHold(key string, hold func(value interface{})) (interface{}, bool) {
	m.mu.Lock()
	entry, exists := m.data[key]
	if !exists {
		m.mu.Unlock()
		return nil, false
	}
	now := m.now()
	if now.After(entry.ExpiresAt) && !m.isPinned(entry.Value) {
		delete(m.data, key)
		m.mu.Unlock()
		m.evicted(key, entry.Value)
		return nil, false
	}
	m.touch(entry, now)
	value := entry.Value
	if hold != nil {
		hold(value)
	}
	m.mu.Unlock()
	return value, true
}

// GetOrSet returns the live value for key or stores the one built by create.
// The second result reports whether create ran. create runs under the map
// lock and must not call back into the map.
func (m *TTLMap) GetOrSet(key string, create func() interface{}) (interface{}, bool) {
	return m.GetOrSetAndHold(key, create, nil)
}

// GetOrSetAndHold is GetOrSet with hold applied to the returned value before
// the map lock is released. A pin taken by hold is therefore visible to every
// later eviction.
func (m *TTLMap) GetOrSetAndHold(
	key string,
	create func() interface{},
	hold func(value interface{}),
) (interface{}, bool) {
	m.mu.Lock()
	now := m.now()
	var evicted []evictedEntry
	if entry, ok := m.data[key]; ok {
		if !now.After(entry.ExpiresAt) || m.isPinned(entry.Value) {
			m.touch(entry, now)
			value := entry.Value
			if hold != nil {
				hold(value)
			}
			m.mu.Unlock()
			return value, false
		}
		delete(m.data, key)
		evicted = append(evicted, evictedEntry{key, entry.Value})
	}
	evicted = append(evicted, m.makeRoom(now)...)
	value := create()
	m.data[key] = &TTLEntry{Value: value, ExpiresAt: now.Add(m.ttl), LastAccess: now}
	if hold != nil {
		hold(value)
	}
	m.mu.Unlock()

	for _, e := range evicted {
		m.evicted(e.key, e.value)
	}
	return value, true
}

// Set adds or updates a value in the TTLMap
func (m *TTLMap) Set(key string, value interface{}) {
	m.mu.Lock()
	now := m.now()
	var evicted []evictedEntry
	if _, ok := m.data[key]; !ok {
		evicted = m.makeRoom(now)
	}
	m.data[key] = &TTLEntry{Value: value, ExpiresAt: now.Add(m.ttl), LastAccess: now}
	m.mu.Unlock()

	for _, e := range evicted {
		m.evicted(e.key, e.value)
	}
}

// Delete removes a key from the TTLMap
func (m *TTLMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// DeleteIf removes key when pred accepts its value and reports whether it did.
func (m *TTLMap) DeleteIf(key string, pred func(value interface{}) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.data[key]
	if !ok || !pred(entry.Value) {
		return false
	}
	delete(m.data, key)
	return true
}

// Clear removes all entries from the TTLMap
func (m *TTLMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*TTLEntry)
}

func (m *TTLMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Range calls fn for every live entry until fn returns false.
func (m *TTLMap) Range(fn func(key string, value interface{}) bool) {
	m.mu.RLock()
	now := m.now()
	snapshot := make([]evictedEntry, 0, len(m.data))
	for k, e := range m.data {
		if now.After(e.ExpiresAt) && !m.isPinned(e.Value) {
			continue
		}
		snapshot = append(snapshot, evictedEntry{k, e.Value})
	}
	m.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Cleanup drops expired entries that are not pinned and returns how many
// were removed.
func (m *TTLMap) Cleanup() int {
	m.mu.Lock()
	now := m.now()
	var evicted []evictedEntry
	for k, e := range m.data {
		if now.After(e.ExpiresAt) && !m.isPinned(e.Value) {
			delete(m.data, k)
			evicted = append(evicted, evictedEntry{k, e.Value})
		}
	}
	m.mu.Unlock()

	for _, e := range evicted {
		m.evicted(e.key, e.value)
	}
	return len(evicted)
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (m *TTLMap) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

type evictedEntry struct {
	key   string
	value interface{}
}

// makeRoom must be called with the write lock held.
func (m *TTLMap) makeRoom(now time.Time) []evictedEntry {
	if m.maxEntries <= 0 || len(m.data) < m.maxEntries {
		return nil
	}
	var evicted []evictedEntry
	for k, e := range m.data {
		if now.After(e.ExpiresAt) && !m.isPinned(e.Value) {
			delete(m.data, k)
			evicted = append(evicted, evictedEntry{k, e.Value})
		}
	}
	for len(m.data) >= m.maxEntries {
		var oldestKey string
		var oldest *TTLEntry
		for k, e := range m.data {
			if m.isPinned(e.Value) {
				continue
			}
			if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
				oldestKey, oldest = k, e
			}
		}
		if oldest == nil {
			// everything is pinned; allow the map to grow past the cap
			break
		}
		delete(m.data, oldestKey)
		evicted = append(evicted, evictedEntry{oldestKey, oldest.Value})
	}
	return evicted
}

func (m *TTLMap) touch(e *TTLEntry, now time.Time) {
	e.LastAccess = now
	e.ExpiresAt = now.Add(m.ttl)
}

func (m *TTLMap) isPinned(value interface{}) bool {
	return m.pinned != nil && m.pinned(value)
}

func (m *TTLMap) evicted(key string, value interface{}) {
	if m.onEvict != nil {
		m.onEvict(key, value)
	}
}
