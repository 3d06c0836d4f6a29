package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/api"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/metrics"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	ReqID  string
	Body   map[string]any
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

// newTestAPI поднимает httptest-сервер, который отвечает status/body и
// записывает последний запрос.
func newTestAPI(t *testing.T, status int, body string) (*api.Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.Auth = r.Header.Get("Authorization")
		rec.ReqID = r.Header.Get("X-Request-ID")
		rec.Body = nil
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	m := metrics.NewSessionMetricsWithRegisterer(prometheus.NewRegistry())
	client := api.NewClient(srv.URL+"/", api.WithLogger(loggerForTests()), api.WithMetrics(m))
	return client, rec
}

func TestClient_SearchProduct(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"id":"p1","sku":"SKU001","name":"Remera","price":10.5,"colors":["Rojo","Azul"]}`)

	product, err := client.SearchProduct(context.Background(), "SKU 001")
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, rec.Method)
	require.Equal(t, "/api/products/search", rec.Path)
	require.Equal(t, "sku=SKU+001", rec.Query)
	require.NotEmpty(t, rec.ReqID)
	require.Empty(t, rec.Auth)

	require.Equal(t, "SKU001", product.SKU)
	require.True(t, product.Price.Equal(decimal.RequireFromString("10.5")))
	require.Equal(t, []string{"Rojo", "Azul"}, product.Colors)
}

func TestClient_SearchProduct_NotFound(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusNotFound, `{"message":"Producto no encontrado"}`)

	_, err := client.SearchProduct(context.Background(), "NOPE")
	require.Error(t, err)
	require.True(t, domain.IsNotFound(err))
	require.True(t, domain.IsRemote(err))
	require.Equal(t, "Producto no encontrado", domain.UserMessage(err))
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusInternalServerError, `not json`)

	err := client.CloseOrder(context.Background(), "order-1")
	require.Error(t, err)

	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	require.Equal(t, "API error: 500", remote.Message)
	require.False(t, domain.IsNotFound(err))
}

func TestClient_CreateOrder_FallsBackToID(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusCreated, `{"id":"abc","orderCode":"X7K2","status":"pending","items":[],"subtotal":0}`)

	order, err := client.CreateOrder(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, rec.Method)
	require.Equal(t, "/api/orders", rec.Path)
	require.Equal(t, "abc", order.ID)
	require.Equal(t, "X7K2", order.Code)
	require.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestClient_CreateOrder_PrefersOrderID(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusCreated, `{"id":"doc-1","orderId":"ord-9","orderCode":"X7K2","status":"pending"}`)

	order, err := client.CreateOrder(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ord-9", order.ID)
}

func TestClient_CreateOrder_MissingID(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusCreated, `{"orderCode":"X7K2"}`)

	_, err := client.CreateOrder(context.Background())
	require.ErrorIs(t, err, domain.ErrOrderIDMissing)
}

func TestClient_AddItem(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusCreated, `{"message":"ok","item":{"sku":"SKU001"}}`)

	err := client.AddItem(context.Background(), "order-1", "SKU001", 2, "Rojo")
	require.NoError(t, err)
	require.Equal(t, "/api/orders/order-1/items", rec.Path)
	require.Equal(t, "SKU001", rec.Body["sku"])
	require.Equal(t, float64(2), rec.Body["quantity"])
	require.Equal(t, "Rojo", rec.Body["color"])
}

func TestClient_AddItem_OmitsEmptyColor(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusCreated, `{}`)

	require.NoError(t, client.AddItem(context.Background(), "order-1", "SKU002", 1, ""))
	_, hasColor := rec.Body["color"]
	require.False(t, hasColor)
}

func TestClient_UpdateItem(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"message":"updated"}`)

	qty := 3
	require.NoError(t, client.UpdateItem(context.Background(), "order-1", 2, domain.ItemPatch{Quantity: &qty}))
	require.Equal(t, http.MethodPut, rec.Method)
	require.Equal(t, "/api/orders/order-1/items/2", rec.Path)
	require.Equal(t, float64(3), rec.Body["quantity"])
	_, hasList := rec.Body["listType"]
	require.False(t, hasList)

	list := domain.ListTypeWishlist
	require.NoError(t, client.UpdateItem(context.Background(), "order-1", 0, domain.ItemPatch{ListType: &list}))
	require.Equal(t, "wishlist", rec.Body["listType"])
	_, hasQty := rec.Body["quantity"]
	require.False(t, hasQty)
}

func TestClient_RemoveItem(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"message":"removed"}`)

	require.NoError(t, client.RemoveItem(context.Background(), "order-1", 4))
	require.Equal(t, http.MethodDelete, rec.Method)
	require.Equal(t, "/api/orders/order-1/items/4", rec.Path)
}

func TestClient_Login(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"token":"jwt-token"}`)

	token, err := client.Login(context.Background(), "caja@tienda.uy", "secret")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", token)
	require.Equal(t, "/api/auth/login", rec.Path)
	require.Equal(t, "caja@tienda.uy", rec.Body["email"])
}

func TestClient_Login_EmptyToken(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusOK, `{}`)

	_, err := client.Login(context.Background(), "caja@tienda.uy", "secret")
	require.True(t, domain.IsRemote(err))
}

func TestClient_GetOrderByCode(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{
		"id":"ord-1","orderCode":"AB12","status":"pending","subtotal":25,"total":25,
		"createdAt":"2025-01-02T10:00:00Z",
		"items":[
			{"id":"item-0","sku":"SKU001","name":"Remera","price":10,"quantity":2,"color":"Rojo","listType":"buy"},
			{"id":"item-1","sku":"SKU002","name":"Gorra","price":5,"quantity":1,"listType":"wishlist"}
		]}`)

	order, err := client.GetOrderByCode(context.Background(), "AB12", "tok")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", rec.Auth)
	require.Equal(t, "/api/orders/code/AB12", rec.Path)
	require.Equal(t, "ord-1", order.ID)
	require.Len(t, order.Items, 2)
	require.Equal(t, domain.ListTypeWishlist, order.Items[1].ListType)
	require.True(t, order.Total.Equal(decimal.NewFromInt(25)))
	require.Equal(t, 2025, order.CreatedAt.Year())
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"message":"ok","status":"paid"}`)

	status, err := client.UpdateOrderStatus(context.Background(), "ord-1", domain.OrderStatusPaid, "tok")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPaid, status)
	require.Equal(t, "/api/orders/ord-1/status", rec.Path)
	require.Equal(t, "paid", rec.Body["status"])
	require.Equal(t, "Bearer tok", rec.Auth)
}

func TestClient_Catalog(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"products":[{"id":"p1","sku":"SKU001","name":"Remera","price":10}]}`)

	products, err := client.ListProducts(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "/api/admin/products", rec.Path)

	_, err = client.CreateProduct(context.Background(), domain.Product{
		SKU:   "SKU009",
		Name:  "Buzo",
		Price: decimal.RequireFromString("19.99"),
	}, "tok")
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, rec.Method)
	require.Equal(t, 19.99, rec.Body["price"])
}

func TestClient_ImportProducts(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"imported":2}`)

	n, err := client.ImportProducts(context.Background(), []domain.Product{
		{SKU: "A", Name: "a", Price: decimal.NewFromInt(1)},
		{SKU: "B", Name: "b", Price: decimal.NewFromInt(2)},
	}, "tok")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "/api/admin/products/import", rec.Path)
	require.Len(t, rec.Body["products"], 2)
}

func TestClient_Health(t *testing.T) {
	client, rec := newTestAPI(t, http.StatusOK, `{"status":"ok"}`)
	require.NoError(t, client.Health(context.Background()))
	require.Equal(t, "/health", rec.Path)

	bad, _ := newTestAPI(t, http.StatusOK, `{"status":"degraded"}`)
	require.Error(t, bad.Health(context.Background()))
}

func TestClient_TransportErrorIsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := api.NewClient(url, api.WithLogger(loggerForTests()), api.WithTimeout(time.Second))
	err := client.CloseOrder(context.Background(), "order-1")
	require.Error(t, err)
	require.True(t, domain.IsRemote(err))
}

func TestClient_ContextCanceled(t *testing.T) {
	client, _ := newTestAPI(t, http.StatusOK, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.CloseOrder(ctx, "order-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	require.Equal(t, api.DefaultBaseURL, api.NewClient("  ").BaseURL())
	require.Equal(t, "http://api.local", api.NewClient("http://api.local/").BaseURL())
}
