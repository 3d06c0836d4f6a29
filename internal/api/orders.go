package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// SearchProduct ищет товар по SKU.
func (c *Client) SearchProduct(ctx context.Context, sku string) (domain.Product, error) {
	var dto productDTO
	err := c.do(ctx, request{
		operation: "search_product",
		method:    http.MethodGet,
		path:      "/api/products/search?sku=" + url.QueryEscape(sku),
	}, &dto)
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDTO(dto), nil
}

// GetProduct возвращает товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	var dto productDTO
	err := c.do(ctx, request{
		operation: "get_product",
		method:    http.MethodGet,
		path:      "/api/products/" + url.PathEscape(productID),
	}, &dto)
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDTO(dto), nil
}

// CreateOrder открывает новый заказ.
func (c *Client) CreateOrder(ctx context.Context) (domain.Order, error) {
	var dto orderDTO
	err := c.do(ctx, request{
		operation: "create_order",
		method:    http.MethodPost,
		path:      "/api/orders",
		body:      createOrderRequest{},
	}, &dto)
	if err != nil {
		return domain.Order{}, err
	}

	order := orderFromDTO(dto)
	if order.ID == "" {
		return domain.Order{}, domain.ErrOrderIDMissing
	}
	return order, nil
}

// GetOrder загружает заказ целиком.
func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var dto orderDTO
	err := c.do(ctx, request{
		operation: "get_order",
		method:    http.MethodGet,
		path:      "/api/orders/" + url.PathEscape(orderID),
	}, &dto)
	if err != nil {
		return domain.Order{}, err
	}
	return orderFromDTO(dto), nil
}

func (c *Client) AddItem(ctx context.Context, orderID, sku string, quantity int, color string) error {
	return c.do(ctx, request{
		operation: "add_item",
		method:    http.MethodPost,
		path:      "/api/orders/" + url.PathEscape(orderID) + "/items",
		body:      addItemRequest{SKU: sku, Quantity: quantity, Color: color},
	}, nil)
}

func (c *Client) UpdateItem(ctx context.Context, orderID string, position int, patch domain.ItemPatch) error {
	body := updateItemRequest{Quantity: patch.Quantity}
	if patch.ListType != nil {
		list := string(*patch.ListType)
		body.ListType = &list
	}
	return c.do(ctx, request{
		operation: "update_item",
		method:    http.MethodPut,
		path:      fmt.Sprintf("/api/orders/%s/items/%d", url.PathEscape(orderID), position),
		body:      body,
	}, nil)
}

func (c *Client) RemoveItem(ctx context.Context, orderID string, position int) error {
	return c.do(ctx, request{
		operation: "remove_item",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/api/orders/%s/items/%d", url.PathEscape(orderID), position),
	}, nil)
}

func (c *Client) CloseOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, request{
		operation: "close_order",
		method:    http.MethodPost,
		path:      "/api/orders/" + url.PathEscape(orderID) + "/close",
	}, nil)
}

var _ domain.OrderAPI = (*Client)(nil)
