package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/api"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/session"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/memory"
)

type testKiosk struct {
	server *httptest.Server
	remote *api.MockService
	ctrl   *session.Controller
}

func loggerForTests() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "httpapi-test")
}

func newTestKiosk(t *testing.T, start bool) *testKiosk {
	t.Helper()

	remote := api.NewMockService()
	remote.AddProduct(domain.Product{
		ID:     "p-1",
		SKU:    "SKU001",
		Name:   "Remera",
		Price:  decimal.RequireFromString("10.00"),
		Colors: []string{"Rojo", "Azul"},
	})
	ctrl := session.NewController(remote, memory.NewLocalStore(), loggerForTests())
	if start {
		require.NoError(t, ctrl.Start(context.Background()))
	}

	server := httptest.NewServer(NewRouter(NewHandler(ctrl, loggerForTests())))
	t.Cleanup(server.Close)
	return &testKiosk{server: server, remote: remote, ctrl: ctrl}
}

type sessionBody struct {
	State     string `json:"state"`
	OrderID   string `json:"orderId"`
	OrderCode string `json:"orderCode"`
	Subtotal  string `json:"subtotal"`
	Selected  *struct {
		SKU    string   `json:"sku"`
		Colors []string `json:"colors"`
	} `json:"selected"`
	Cart struct {
		Tab   string `json:"tab"`
		Lines []struct {
			Position int `json:"position"`
			Item     struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
				Color    string `json:"color"`
				ListType string `json:"listType"`
			} `json:"item"`
			Subtotal string `json:"subtotal"`
		} `json:"lines"`
		Subtotal      string `json:"subtotal"`
		BuyCount      int    `json:"buyCount"`
		WishlistCount int    `json:"wishlistCount"`
		CanClose      bool   `json:"canClose"`
	} `json:"cart"`
	Message string `json:"message"`
}

func (k *testKiosk) do(t *testing.T, method, path string, body any) (int, sessionBody) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, k.server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded sessionBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestGetSession(t *testing.T) {
	k := newTestKiosk(t, true)

	status, body := k.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ready", body.State)
	require.Equal(t, "order-1", body.OrderID)
	require.Equal(t, "A001", body.OrderCode)
	require.Equal(t, "buy", body.Cart.Tab)
	require.Empty(t, body.Cart.Lines)
	require.False(t, body.Cart.CanClose)
}

func TestCustomerFlow(t *testing.T) {
	k := newTestKiosk(t, true)

	status, body := k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "sku001"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "item-selected", body.State)
	require.NotNil(t, body.Selected)
	require.Equal(t, []string{"Rojo", "Azul"}, body.Selected.Colors)

	status, body = k.do(t, http.MethodPost, "/session/items", map[string]any{"quantity": 2, "color": "Rojo"})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "ready", body.State)
	require.Len(t, body.Cart.Lines, 1)
	require.Equal(t, "item-1", body.Cart.Lines[0].Item.ID)
	require.True(t, decimal.RequireFromString(body.Subtotal).Equal(decimal.NewFromInt(20)))

	status, body = k.do(t, http.MethodPatch, "/session/items/0", map[string]any{"listType": "wishlist"})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body.Cart.Lines)
	require.Equal(t, 1, body.Cart.WishlistCount)
	require.False(t, body.Cart.CanClose)

	status, body = k.do(t, http.MethodGet, "/session?tab=wishlist", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Cart.Lines, 1)
	require.Equal(t, 0, body.Cart.Lines[0].Position)

	status, body = k.do(t, http.MethodPost, "/session/close", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body.Message, "no items to buy")
	require.Zero(t, k.remote.CloseCalls)

	status, _ = k.do(t, http.MethodPatch, "/session/items/0", map[string]any{"listType": "buy", "quantity": 3})
	require.Equal(t, http.StatusOK, status)

	status, body = k.do(t, http.MethodPost, "/session/close", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "closed", body.State)
	require.Equal(t, "A001", body.OrderCode)

	status, body = k.do(t, http.MethodPost, "/session/new", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ready", body.State)
	require.Equal(t, "A002", body.OrderCode)
}

// listMoveFailingRemote отклоняет любое изменение списка позиции.
type listMoveFailingRemote struct {
	*api.MockService
}

func (r listMoveFailingRemote) UpdateItem(ctx context.Context, orderID string, position int, patch domain.ItemPatch) error {
	if patch.ListType != nil {
		return domain.NewRemoteError(http.StatusServiceUnavailable, "")
	}
	return r.MockService.UpdateItem(ctx, orderID, position, patch)
}

func TestUpdateItem_QuantityAndListTypeInOneRemoteCall(t *testing.T) {
	k := newTestKiosk(t, true)
	k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	k.do(t, http.MethodPost, "/session/items", map[string]any{"quantity": 1})
	calls := k.remote.UpdateCalls

	status, body := k.do(t, http.MethodPatch, "/session/items/0", map[string]any{"quantity": 5, "listType": "wishlist"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Cart.WishlistCount)

	require.Equal(t, calls+1, k.remote.UpdateCalls)
	require.NotNil(t, k.remote.LastPatch.Quantity)
	require.Equal(t, 5, *k.remote.LastPatch.Quantity)
	require.NotNil(t, k.remote.LastPatch.ListType)
	require.Equal(t, domain.ListTypeWishlist, *k.remote.LastPatch.ListType)

	item := k.ctrl.Items()[0]
	require.Equal(t, 5, item.Quantity)
	require.Equal(t, domain.ListTypeWishlist, item.ListType)
}

func TestUpdateItem_RejectedListChangeKeepsQuantity(t *testing.T) {
	mock := api.NewMockService()
	mock.AddProduct(domain.Product{ID: "p-1", SKU: "SKU001", Name: "Remera", Price: decimal.RequireFromString("10.00")})
	store := memory.NewLocalStore()
	ctrl := session.NewController(listMoveFailingRemote{MockService: mock}, store, loggerForTests())
	require.NoError(t, ctrl.Start(context.Background()))

	server := httptest.NewServer(NewRouter(NewHandler(ctrl, loggerForTests())))
	t.Cleanup(server.Close)
	k := &testKiosk{server: server, remote: mock, ctrl: ctrl}

	k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	k.do(t, http.MethodPost, "/session/items", map[string]any{"quantity": 1})
	before, ok := store.Raw(domain.OrderSlotKey)
	require.True(t, ok)

	status, body := k.do(t, http.MethodPatch, "/session/items/0", map[string]any{"quantity": 5, "listType": "wishlist"})
	require.Equal(t, http.StatusBadGateway, status)
	require.Equal(t, "API error: 503", body.Message)

	item := ctrl.Items()[0]
	require.Equal(t, 1, item.Quantity)
	require.Equal(t, domain.ListTypeBuy, item.ListType)

	after, ok := store.Raw(domain.OrderSlotKey)
	require.True(t, ok)
	require.Equal(t, before, after)
	require.Zero(t, mock.UpdateCalls)
}

func TestCancelSelection(t *testing.T) {
	k := newTestKiosk(t, true)

	k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	status, body := k.do(t, http.MethodPost, "/session/selection/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ready", body.State)
	require.Nil(t, body.Selected)
}

func TestRemoveItem(t *testing.T) {
	k := newTestKiosk(t, true)

	k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	k.do(t, http.MethodPost, "/session/items", map[string]any{"quantity": 1})

	status, body := k.do(t, http.MethodDelete, "/session/items/0", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body.Cart.Lines)
	require.Equal(t, 0, k.remote.LastPosition)
}

func TestErrorMapping(t *testing.T) {
	k := newTestKiosk(t, true)

	status, body := k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "NOPE"})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Product not found", body.Message)

	status, _ = k.do(t, http.MethodPost, "/session/items", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusConflict, status)

	status, _ = k.do(t, http.MethodDelete, "/session/items/5", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, body = k.do(t, http.MethodPatch, "/session/items/abc", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "position must be an integer", body.Message)

	status, _ = k.do(t, http.MethodPatch, "/session/items/0", map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)

	k.remote.SearchErr = domain.NewRemoteError(http.StatusInternalServerError, "")
	status, body = k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	require.Equal(t, http.StatusBadGateway, status)
	require.Equal(t, "API error: 500", body.Message)

	status, _ = k.do(t, http.MethodPost, "/session/start", nil)
	require.Equal(t, http.StatusConflict, status)
}

func TestStartRetryAfterFailure(t *testing.T) {
	k := newTestKiosk(t, false)
	k.remote.CreateErr = domain.NewRemoteError(http.StatusServiceUnavailable, "")

	status, _ := k.do(t, http.MethodPost, "/session/start", nil)
	require.Equal(t, http.StatusBadGateway, status)
	require.Equal(t, session.StateFailed, k.ctrl.State())

	status, body := k.do(t, http.MethodPost, "/session/search", map[string]string{"sku": "SKU001"})
	require.Equal(t, http.StatusConflict, status)
	require.NotEmpty(t, body.Message)

	k.remote.CreateErr = nil
	status, body = k.do(t, http.MethodPost, "/session/start", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ready", body.State)
}

func TestInvalidJSON(t *testing.T) {
	k := newTestKiosk(t, true)

	req, err := http.NewRequest(http.MethodPost, k.server.URL+"/session/search", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrQuantityInvalid, http.StatusBadRequest},
		{domain.ErrItemNotFound, http.StatusNotFound},
		{domain.NewRemoteError(http.StatusNotFound, ""), http.StatusNotFound},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrSessionClosed, http.StatusConflict},
		{domain.ErrPersistence, http.StatusInternalServerError},
		{domain.NewRemoteError(http.StatusConflict, "x"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, statusFor(tt.err), "error %v", tt.err)
	}
}
