package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It is the default for tests and for
// single-process tools that do not need the cache to survive restarts.
type Memory struct {
	mu       sync.RWMutex
	data     map[string][]byte
	writeErr error
	notifier Notifier
}

func NewMemory(n Notifier) *Memory {
	return &Memory{data: make(map[string][]byte), notifier: orNop(n)}
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Write(ctx context.Context, key string, blob []byte) error {
	m.mu.Lock()
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	m.data[key] = append([]byte(nil), blob...)
	m.mu.Unlock()

	m.notifier.Notify(ctx, key)
	return nil
}

// FailWrites makes every following Write return err; nil restores normal
// behaviour.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}
