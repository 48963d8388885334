package store

import (
	"context"
	"sync"
)

type memCollection struct {
	order []string
	docs  map[string][]byte
}

// MemoryEngine keeps documents in process memory. It is the default backend and
// loses everything on restart.
type MemoryEngine struct {
	mu     sync.RWMutex
	colls  map[string]*memCollection
	closed bool
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{colls: make(map[string]*memCollection)}
}

func (m *MemoryEngine) Put(_ context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		c = &memCollection{docs: make(map[string][]byte)}
		m.colls[collection] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = append([]byte(nil), doc...)
	return nil
}

func (m *MemoryEngine) Fetch(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryEngine) Remove(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		return nil
	}
	if _, exists := c.docs[id]; !exists {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Scan works on a snapshot so fn may call back into the engine.
func (m *MemoryEngine) Scan(_ context.Context, collection string, fn func(id string, doc []byte) bool) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		m.mu.RUnlock()
		return nil
	}
	ids := make([]string, len(c.order))
	docs := make([][]byte, len(c.order))
	for i, id := range c.order {
		ids[i] = id
		docs[i] = c.docs[id]
	}
	m.mu.RUnlock()

	for i := range ids {
		if !fn(ids[i], append([]byte(nil), docs[i]...)) {
			break
		}
	}
	return nil
}

func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
