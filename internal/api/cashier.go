package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// Login обменивает email и пароль на bearer-токен.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		operation: "login",
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", domain.NewRemoteError(http.StatusBadGateway, "login response has no token")
	}
	return resp.Token, nil
}

// GetOrderByCode ищет заказ по коду выдачи.
func (c *Client) GetOrderByCode(ctx context.Context, code, token string) (domain.Order, error) {
	var dto orderDTO
	err := c.do(ctx, request{
		operation: "get_order_by_code",
		method:    http.MethodGet,
		path:      "/api/orders/code/" + url.PathEscape(code),
		token:     token,
	}, &dto)
	if err != nil {
		return domain.Order{}, err
	}
	return orderFromDTO(dto), nil
}

// UpdateOrderStatus меняет статус заказа; если сервис не вернул статус,
// подтверждённым считается запрошенный.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, token string) (domain.OrderStatus, error) {
	var resp statusResponse
	err := c.do(ctx, request{
		operation: "update_order_status",
		method:    http.MethodPut,
		path:      "/api/orders/" + url.PathEscape(orderID) + "/status",
		body:      statusRequest{Status: string(status)},
		token:     token,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Status == "" {
		return status, nil
	}
	return domain.OrderStatus(resp.Status), nil
}

var _ domain.CashierAPI = (*Client)(nil)
