// Package storagetest содержит общий набор проверок для реализаций
// domain.LocalStore. Каждый драйвер вызывает Run из своих тестов.
package storagetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// Factory возвращает пустое хранилище; закрытие — забота фабрики.
type Factory func(t *testing.T) domain.LocalStore

// Run прогоняет контракт LocalStore на свежем хранилище.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty order slot", func(t *testing.T) {
		store := newStore(t)

		_, ok, err := store.LoadOrder(context.Background())
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("save and load order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		snapshot := SampleSnapshot()
		require.NoError(t, store.SaveOrder(ctx, snapshot))

		loaded, ok, err := store.LoadOrder(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		requireSnapshotEqual(t, snapshot, loaded)
	})

	t.Run("save overwrites previous order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveOrder(ctx, SampleSnapshot()))

		next := domain.NewSnapshot("order-2", "B002", nil, 0)
		require.NoError(t, store.SaveOrder(ctx, next))

		loaded, ok, err := store.LoadOrder(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "order-2", loaded.OrderID)
		require.Equal(t, "B002", loaded.OrderCode)
		require.Empty(t, loaded.Items)
		require.NotNil(t, loaded.Items)
	})

	t.Run("clear order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.SaveOrder(ctx, SampleSnapshot()))
		require.NoError(t, store.ClearOrder(ctx))

		_, ok, err := store.LoadOrder(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		// повторная очистка пустого слота не ошибка
		require.NoError(t, store.ClearOrder(ctx))
	})

	t.Run("token slot is independent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, ok, err := store.LoadToken(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, store.SaveOrder(ctx, SampleSnapshot()))
		require.NoError(t, store.SaveToken(ctx, "tok-1"))
		require.NoError(t, store.SaveToken(ctx, "tok-2"))

		token, ok, err := store.LoadToken(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "tok-2", token)

		require.NoError(t, store.ClearToken(ctx))
		_, ok, err = store.LoadToken(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		_, ok, err = store.LoadOrder(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

// SampleSnapshot — снимок с одной позицией в покупке и одной в списке желаний.
func SampleSnapshot() domain.Snapshot {
	items := []domain.OrderItem{
		{
			ID:       domain.ItemID(1),
			SKU:      "SKU001",
			Name:     "Remera",
			Price:    decimal.RequireFromString("10.00"),
			Quantity: 2,
			Color:    "Rojo",
			ListType: domain.ListTypeBuy,
		},
		{
			ID:       domain.ItemID(2),
			SKU:      "SKU002",
			Name:     "Gorro",
			Price:    decimal.RequireFromString("4.50"),
			Quantity: 1,
			ListType: domain.ListTypeWishlist,
		},
	}
	return domain.NewSnapshot("order-1", "A001", items, 3)
}

func requireSnapshotEqual(t *testing.T, want, got domain.Snapshot) {
	t.Helper()

	require.Equal(t, want.OrderID, got.OrderID)
	require.Equal(t, want.OrderCode, got.OrderCode)
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.ItemSeq, got.ItemSeq)
	require.True(t, want.Subtotal.Equal(got.Subtotal), "subtotal: want %s got %s", want.Subtotal, got.Subtotal)
	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		require.Equal(t, w.ID, g.ID)
		require.Equal(t, w.SKU, g.SKU)
		require.Equal(t, w.Name, g.Name)
		require.Equal(t, w.Quantity, g.Quantity)
		require.Equal(t, w.Color, g.Color)
		require.Equal(t, w.ListType, g.ListType)
		require.True(t, w.Price.Equal(g.Price), "price of %s", w.ID)
	}
}
