// Package sqlite хранит слоты киоска в файле SQLite (pure-Go драйвер
// modernc.org/sqlite). Это хранилище по умолчанию: переживает перезапуск
// процесса так же, как localStorage переживает перезагрузку страницы.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_slots (
    slot       TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// LocalStore — реализация domain.LocalStore поверх SQLite.
type LocalStore struct {
	db *sql.DB
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
// Путь ":memory:" удобен в тестах.
func Open(ctx context.Context, path string) (*LocalStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// один писатель; для ":memory:" ещё и единственная база
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &LocalStore{db: db}, nil
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

// Ping проверяет доступность базы; используется health-чекером.
func (s *LocalStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store is not initialized")
	}
	return s.db.PingContext(ctx)
}

func (s *LocalStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *LocalStore) load(ctx context.Context, slot string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_slots WHERE slot = ?`, slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: load slot %q: %w", slot, err)
	}
	return value, true, nil
}

func (s *LocalStore) save(ctx context.Context, slot, value string) error {
	const q = `
		INSERT INTO local_slots (slot, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`

	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, q, slot, value, updatedAt); err != nil {
		return fmt.Errorf("sqlite: save slot %q: %w", slot, err)
	}
	return nil
}

func (s *LocalStore) clear(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("sqlite: clear slot %q: %w", slot, err)
	}
	return nil
}

var _ domain.LocalStore = (*LocalStore)(nil)
