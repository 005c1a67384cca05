package repository

import "context"

// ByteStore is the durable key-value medium snapshots are mirrored to.
// Get reports ok=false when the key has never been written.
type ByteStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by byte stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
