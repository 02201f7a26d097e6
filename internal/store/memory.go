package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemoryKV keeps values in process memory. Contents are lost on restart.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *MemoryKV) Set(_ context.Context, key string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(val)
	return nil
}

func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryKV) GetByPrefix(_ context.Context, prefix string) ([]KVPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []KVPair
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, KVPair{Key: k, Value: slices.Clone(v)})
		}
	}
	// orden determinista
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryKV) Ping(context.Context) error { return nil }

func (s *MemoryKV) Close() error { return nil }
