package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/cart"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

type searchRequest struct {
	SKU string `json:"sku"`
}

type addItemRequest struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	ListType *string `json:"listType,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type productResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Colors      []string        `json:"colors"`
}

// sessionResponse — ответ на любой запрос к сессии. Суммы — строки
// с десятичной записью, как их сериализует decimal.
type sessionResponse struct {
	State     string           `json:"state"`
	OrderID   string           `json:"orderId,omitempty"`
	OrderCode string           `json:"orderCode,omitempty"`
	Status    string           `json:"status,omitempty"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Selected  *productResponse `json:"selected,omitempty"`
	Cart      cart.View        `json:"cart"`
}

func productFromDomain(p domain.Product) productResponse {
	colors := p.Colors
	if colors == nil {
		colors = []string{}
	}
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Colors:      colors,
	}
}
