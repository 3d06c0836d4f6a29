package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/storagetest"
)

func TestLocalStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) domain.LocalStore {
		return NewLocalStore()
	})
}

func TestLocalStore_RawReturnsCopy(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	require.NoError(t, store.SaveOrder(ctx, storagetest.SampleSnapshot()))

	raw, ok := store.Raw(domain.OrderSlotKey)
	require.True(t, ok)
	require.Contains(t, string(raw), `"orderId":"order-1"`)

	raw[0] = 'x'
	again, _ := store.Raw(domain.OrderSlotKey)
	require.NotEqual(t, raw[0], again[0])
}

func TestLocalStore_CorruptSlot(t *testing.T) {
	store := NewLocalStore()
	store.slots[domain.OrderSlotKey] = []byte("{not json")

	_, ok, err := store.LoadOrder(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}
