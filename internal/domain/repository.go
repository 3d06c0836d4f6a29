package domain

import "context"

// SnapshotStore хранит снимок единственного активного заказа устройства.
type SnapshotStore interface {
	// LoadOrder возвращает снимок; ok=false, если слот пуст.
	LoadOrder(ctx context.Context) (snapshot Snapshot, ok bool, err error)
	// SaveOrder целиком перезаписывает слот.
	SaveOrder(ctx context.Context, snapshot Snapshot) error
	ClearOrder(ctx context.Context) error
}

// CredentialStore хранит токен кассира/администратора.
type CredentialStore interface {
	LoadToken(ctx context.Context) (token string, ok bool, err error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// LocalStore объединяет два независимых слота локального хранилища.
type LocalStore interface {
	SnapshotStore
	CredentialStore
	Close() error
}

// Ключи слотов, общие для всех реализаций хранилища.
const (
	OrderSlotKey = "mi_tienda_order"
	TokenSlotKey = "cashier_token"
)
