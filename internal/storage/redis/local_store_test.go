package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/storagetest"
)

const defaultLocalRedisAddr = "localhost:6379"

func openClientForIntegrationTest(t *testing.T) goredis.UniversalClient {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("TIENDA_REDIS_TEST_ADDR"))
	if addr == "" {
		addr = defaultLocalRedisAddr
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis is not available for integration tests: %s: %v", addr, err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestLocalStore_RedisContract(t *testing.T) {
	client := openClientForIntegrationTest(t)

	storagetest.Run(t, func(t *testing.T) domain.LocalStore {
		store, err := NewLocalStore(client, "mi-tienda-test", "test-"+uuid.NewString())
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = store.ClearOrder(context.Background())
			_ = store.ClearToken(context.Background())
		})
		return store
	})
}

func TestLocalStore_Key(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: defaultLocalRedisAddr})
	defer client.Close()

	store, err := NewLocalStore(client, "", "kiosk-7")
	require.NoError(t, err)
	require.Equal(t, "mi-tienda:kiosk-7:mi_tienda_order", store.Key(domain.OrderSlotKey))
	require.Equal(t, "mi-tienda:kiosk-7:cashier_token", store.Key(domain.TokenSlotKey))
}

func TestNewLocalStore_Guards(t *testing.T) {
	_, err := NewLocalStore(nil, "", "kiosk")
	require.Error(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: defaultLocalRedisAddr})
	defer client.Close()
	_, err = NewLocalStore(client, "", "  ")
	require.Error(t, err)
}
