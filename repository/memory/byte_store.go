package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fastygo/taskboard/repository"
)

// ErrQuotaExceeded is returned when a write would exceed the configured limit.
var ErrQuotaExceeded = errors.New("memory byte store: quota exceeded")

// ByteStore keeps values in process memory. A positive quota caps the size
// of any single value, which mimics browser-style storage limits in tests.
type ByteStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	quota  int
}

// NewByteStore returns an empty store. quota <= 0 disables the limit.
func NewByteStore(quota int) *ByteStore {
	return &ByteStore{values: make(map[string][]byte), quota: quota}
}

func (s *ByteStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (s *ByteStore) Set(_ context.Context, key string, value []byte) error {
	if s.quota > 0 && len(value) > s.quota {
		return ErrQuotaExceeded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(value)
	return nil
}

func (s *ByteStore) Ping(context.Context) error {
	return nil
}

var (
	_ repository.ByteStore = (*ByteStore)(nil)
	_ repository.Pinger    = (*ByteStore)(nil)
)
