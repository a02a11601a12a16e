package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]UploadParams
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]UploadParams{}}
}

func (m *memoryStore) Upload(_ context.Context, params UploadParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[params.Name] = params
	return nil
}

func (m *memoryStore) Download(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[name].Data, nil
}
