package memory

import (
	"context"
	"sync"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage"
)

// LocalStore — in-memory реализация LocalStore.
// Слоты хранятся сериализованными, как в localStorage браузера.
type LocalStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewLocalStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		slots: make(map[string][]byte),
	}
}

// LoadOrder возвращает снимок или ok=false, если слот пуст.
func (s *LocalStore) LoadOrder(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	data, ok := s.slots[domain.OrderSlotKey]
	s.mu.RUnlock()
	if !ok {
		return domain.Snapshot{}, false, nil
	}

	snapshot, err := storage.DecodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// SaveOrder перезаписывает слот заказа целиком.
func (s *LocalStore) SaveOrder(_ context.Context, snapshot domain.Snapshot) error {
	data, err := storage.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[domain.OrderSlotKey] = data
	return nil
}

func (s *LocalStore) ClearOrder(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, domain.OrderSlotKey)
	return nil
}

func (s *LocalStore) LoadToken(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[domain.TokenSlotKey]
	if !ok {
		return "", false, nil
	}
	return string(data), true, nil
}

func (s *LocalStore) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[domain.TokenSlotKey] = []byte(token)
	return nil
}

func (s *LocalStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, domain.TokenSlotKey)
	return nil
}

// Raw возвращает сериализованное содержимое слота; нужен тестам, которые
// сравнивают снимок побайтно.
func (s *LocalStore) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

func (s *LocalStore) Close() error { return nil }

var _ domain.LocalStore = (*LocalStore)(nil)
