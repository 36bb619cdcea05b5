package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/pkg/script"
)

// MockStorage is an in-memory Storage for tests
type MockStorage struct {
	mu        sync.RWMutex
	saves     map[uuid.UUID]map[string][]script.Var
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		saves: make(map[uuid.UUID]map[string][]script.Var),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveVars call fail with err
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveVars(ctx context.Context, saveID uuid.UUID, scope string, vars []script.Var) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	save, ok := m.saves[saveID]
	if !ok {
		save = make(map[string][]script.Var)
		m.saves[saveID] = save
	}
	save[scope] = append([]script.Var(nil), vars...)
	return nil
}

func (m *MockStorage) LoadVars(ctx context.Context, saveID uuid.UUID, scope string) ([]script.Var, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vars, ok := m.saves[saveID][scope]
	if !ok {
		return nil, nil // Return nil for not found
	}
	return append([]script.Var(nil), vars...), nil
}

func (m *MockStorage) DeleteSave(ctx context.Context, saveID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, saveID)
	return nil
}

func (m *MockStorage) ListScopes(ctx context.Context, saveID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scopes := make([]string, 0, len(m.saves[saveID]))
	for scope := range m.saves[saveID] {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes, nil
}
