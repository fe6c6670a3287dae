package cache

import (
	"context"
	"errors"
	"time"
)

// MockCacheService is an in-memory CacheService for tests
type MockCacheService struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{data: map[string][]byte{}}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// mockStore answers by-link lookups from a fixed set
type mockStore struct {
	links     map[string]bool
	findErr   error
	findCalls int
}

func newMockStore() *mockStore {
	return &mockStore{links: map[string]bool{}}
}

func (s *mockStore) Insert(ctx context.Context, record interface{}) error { return nil }

func (s *mockStore) FindByLink(ctx context.Context, link string) (bool, error) {
	s.findCalls++
	if s.findErr != nil {
		return false, s.findErr
	}
	return s.links[link], nil
}

func (s *mockStore) Close(ctx context.Context) error { return nil }
