package repository

import (
	"context"
	"sync"
)

// プロセス内だけの KeyValueStore（開発・テスト用）
type KVMemoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKVMemoryRepository() *KVMemoryRepository {
	return &KVMemoryRepository{values: map[string]string{}}
}

func (r *KVMemoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *KVMemoryRepository) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}
