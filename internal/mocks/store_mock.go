package mocks

import (
	"context"
	"sync"

	"github.com/25x8/nginx-probe/internal/models"
)

// MockStore - хранилище снимков в памяти с подменяемыми ошибками
type MockStore struct {
	mu        sync.Mutex
	Snapshots map[models.TargetKey]models.Snapshot
	LoadErr   error
	SaveErr   error
	Loads     int
	Saves     int
}

func NewMockStore() *MockStore {
	return &MockStore{
		Snapshots: make(map[models.TargetKey]models.Snapshot),
	}
}

func (m *MockStore) Load(_ context.Context, key models.TargetKey) (models.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return nil, false, m.LoadErr
	}
	snapshot, ok := m.Snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return append(models.Snapshot(nil), snapshot...), true, nil
}

func (m *MockStore) Save(_ context.Context, key models.TargetKey, snapshot models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Snapshots[key] = append(models.Snapshot(nil), snapshot...)
	return nil
}

// Snapshot возвращает сохраненный снимок цели
func (m *MockStore) Snapshot(key models.TargetKey) (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.Snapshots[key]
	return snapshot, ok
}
