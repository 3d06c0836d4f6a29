package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// Формы JSON, которыми обменивается API магазина. Цены на проводе — числа.

type productDTO struct {
	ID          string   `json:"id,omitempty"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Colors      []string `json:"colors,omitempty"`
}

type orderItemDTO struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Color    string  `json:"color,omitempty"`
	ListType string  `json:"listType"`
}

type orderDTO struct {
	ID        string         `json:"id"`
	OrderID   string         `json:"orderId,omitempty"`
	OrderCode string         `json:"orderCode"`
	Status    string         `json:"status"`
	Items     []orderItemDTO `json:"items"`
	Subtotal  float64        `json:"subtotal"`
	Total     *float64       `json:"total,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	ClosedAt  string         `json:"closedAt,omitempty"`
}

type createOrderRequest struct {
	ListType string `json:"listType,omitempty"`
}

type addItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Color    string `json:"color,omitempty"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	ListType *string `json:"listType,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type productsResponse struct {
	Products []productDTO `json:"products"`
}

type importRequest struct {
	Products []productDTO `json:"products"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

func productFromDTO(dto productDTO) domain.Product {
	return domain.Product{
		ID:          dto.ID,
		SKU:         dto.SKU,
		Name:        dto.Name,
		Price:       decimal.NewFromFloat(dto.Price),
		Description: dto.Description,
		Image:       dto.Image,
		Colors:      dto.Colors,
	}
}

func productToDTO(p domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Image:       p.Image,
		Colors:      p.Colors,
	}
}

// orderFromDTO переносит заказ из ответа API; идентификатор берётся из
// orderId, а при его отсутствии из id.
func orderFromDTO(dto orderDTO) domain.Order {
	id := dto.OrderID
	if id == "" {
		id = dto.ID
	}

	items := make([]domain.OrderItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, domain.OrderItem{
			ID:       item.ID,
			SKU:      item.SKU,
			Name:     item.Name,
			Price:    decimal.NewFromFloat(item.Price),
			Quantity: item.Quantity,
			Color:    item.Color,
			ListType: domain.ListType(item.ListType),
		})
	}

	order := domain.Order{
		ID:        id,
		Code:      dto.OrderCode,
		Status:    domain.OrderStatus(dto.Status),
		Items:     items,
		Subtotal:  decimal.NewFromFloat(dto.Subtotal),
		CreatedAt: parseTime(dto.CreatedAt),
		ClosedAt:  parseTime(dto.ClosedAt),
	}
	if dto.Total != nil {
		order.Total = decimal.NewFromFloat(*dto.Total)
	}
	return order
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
