package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
	key       string
}

// Memory is an in-process Store with optional LRU bounding.
type Memory struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *memoryOptions
	done     chan struct{}
	now      func() time.Time
	mu       sync.Mutex
	closed   bool
}

// NewMemory creates an in-memory store. Call Close to stop the janitor.
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
		now:      time.Now,
	}
	if o.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

// Remember implements Store.
func (m *Memory) Remember(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}

	now := m.now()
	if el, ok := m.items[key]; ok {
		e := el.Value.(*entry)
		if now.Before(e.expiresAt) {
			return true, nil
		}
		e.expiresAt = now.Add(ttl)
		m.eviction.MoveToFront(el)
		return false, nil
	}

	m.items[key] = m.eviction.PushFront(&entry{key: key, expiresAt: now.Add(ttl)})
	if m.opts.maxEntries > 0 && m.eviction.Len() > m.opts.maxEntries {
		m.removeElement(m.eviction.Back())
	}
	return false, nil
}

// Len returns the number of remembered keys, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor and forgets every key.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.items = make(map[string]*list.Element)
	m.eviction.Init()
	return nil
}

func (m *Memory) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	m.eviction.Remove(el)
	delete(m.items, el.Value.(*entry).key)
}

func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for el := m.eviction.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*entry).expiresAt) {
			m.removeElement(el)
		}
		el = prev
	}
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.deleteExpired()
		case <-m.done:
			return
		}
	}
}

var _ Store = (*Memory)(nil)
