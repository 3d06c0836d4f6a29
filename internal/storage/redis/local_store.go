// Package redis хранит слоты киоска в Redis. Ключи имеют вид
// <namespace>:<device>:<slot>, так что один инстанс обслуживает несколько киосков.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage"
)

// DefaultNamespace — префикс ключей по умолчанию.
const DefaultNamespace = "mi-tienda"

// LocalStore — реализация domain.LocalStore поверх Redis.
type LocalStore struct {
	client    goredis.UniversalClient
	namespace string
	deviceID  string
}

// Open подключается к Redis по адресу addr и проверяет соединение.
func Open(ctx context.Context, addr, deviceID string) (*LocalStore, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	store, err := NewLocalStore(client, DefaultNamespace, deviceID)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// NewLocalStore оборачивает готовый клиент.
func NewLocalStore(client goredis.UniversalClient, namespace, deviceID string) (*LocalStore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, errors.New("device id is required")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &LocalStore{client: client, namespace: namespace, deviceID: deviceID}, nil
}

// Key возвращает ключ Redis для слота.
func (s *LocalStore) Key(slot string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, s.deviceID, slot)
}

func (s *LocalStore) LoadOrder(ctx context.Context) (domain.Snapshot, bool, error) {
	value, ok, err := s.load(ctx, domain.OrderSlotKey)
	if err != nil || !ok {
		return domain.Snapshot{}, false, err
	}

	snapshot, err := storage.DecodeSnapshot([]byte(value))
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *LocalStore) SaveOrder(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := storage.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	return s.save(ctx, domain.OrderSlotKey, data)
}

func (s *LocalStore) ClearOrder(ctx context.Context) error {
	return s.clear(ctx, domain.OrderSlotKey)
}

func (s *LocalStore) LoadToken(ctx context.Context) (string, bool, error) {
	return s.load(ctx, domain.TokenSlotKey)
}

func (s *LocalStore) SaveToken(ctx context.Context, token string) error {
	return s.save(ctx, domain.TokenSlotKey, token)
}

func (s *LocalStore) ClearToken(ctx context.Context) error {
	return s.clear(ctx, domain.TokenSlotKey)
}

func (s *LocalStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *LocalStore) Close() error {
	return s.client.Close()
}

func (s *LocalStore) load(ctx context.Context, slot string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.Key(slot)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: load slot %s: %w", slot, err)
	}
	return value, true, nil
}

// save пишет без TTL: слот живёт до явной очистки.
func (s *LocalStore) save(ctx context.Context, slot string, value any) error {
	if err := s.client.Set(ctx, s.Key(slot), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: save slot %s: %w", slot, err)
	}
	return nil
}

func (s *LocalStore) clear(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.Key(slot)).Err(); err != nil {
		return fmt.Errorf("redis: clear slot %s: %w", slot, err)
	}
	return nil
}

var _ domain.LocalStore = (*LocalStore)(nil)
