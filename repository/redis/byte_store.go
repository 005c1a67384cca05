package redis

import (
	"context"
	"errors"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/repository"
)

// ByteStore keeps snapshots in Redis under a key prefix.
type ByteStore struct {
	client *redislib.Client
	prefix string
}

// NewByteStore creates a Redis-backed byte store. Keys never expire.
func NewByteStore(client *redislib.Client, prefix string) *ByteStore {
	if prefix == "" {
		prefix = "taskboard:"
	}
	return &ByteStore{
		client: client,
		prefix: prefix,
	}
}

func (r *ByteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return result, true, nil
}

func (r *ByteStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *ByteStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *ByteStore) key(key string) string {
	return fmt.Sprintf("%s%s", r.prefix, key)
}

var (
	_ repository.ByteStore = (*ByteStore)(nil)
	_ repository.Pinger    = (*ByteStore)(nil)
)
