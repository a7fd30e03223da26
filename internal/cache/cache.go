// Package cache is the client-local blob store that holds ephemeral
// (not yet persisted) records. Every write replaces the whole blob stored
// under a key, so a reader never sees a partially written collection.
package cache

import "context"

// Store reads and atomically replaces blobs by key. Read returns nil, nil
// for a key that was never written.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, blob []byte) error
}

// Notifier is told about every successful write so other parts of the
// application can refresh their view of the key.
type Notifier interface {
	Notify(ctx context.Context, key string)
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
