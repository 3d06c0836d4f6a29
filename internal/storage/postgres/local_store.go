package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage"
)

// LocalStore хранит слоты киоска в общей базе; строки разделены по device_id,
// поэтому несколько киосков не видят заказы друг друга.
type LocalStore struct {
	store    *Store
	deviceID string
}

// NewLocalStore привязывает хранилище к устройству. Close закрывает и Store.
func NewLocalStore(store *Store, deviceID string) (*LocalStore, error) {
	if store == nil || store.db == nil {
		return nil, errors.New("postgres store is not initialized")
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, errors.New("device id is required")
	}
	return &LocalStore{store: store, deviceID: deviceID}, nil
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
	return s.save(ctx, domain.OrderSlotKey, string(data))
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

// Ping проверяет доступность базы.
func (s *LocalStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LocalStore) Close() error {
	return s.store.Close()
}

func (s *LocalStore) load(ctx context.Context, slot string) (string, bool, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT value
		FROM local_slots
		WHERE device_id = $1 AND slot = $2
	`, s.deviceID, slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return value, true, nil
}

func (s *LocalStore) save(ctx context.Context, slot, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO local_slots (device_id, slot, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (device_id, slot) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, s.deviceID, slot, value)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

func (s *LocalStore) clear(ctx context.Context, slot string) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM local_slots
		WHERE device_id = $1 AND slot = $2
	`, s.deviceID, slot)
	if err != nil {
		return fmt.Errorf("clear slot %s: %w", slot, err)
	}
	return nil
}

var _ domain.LocalStore = (*LocalStore)(nil)
