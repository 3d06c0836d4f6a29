package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа на стороне магазина.
type OrderStatus string

const (
	// OrderStatusPending — заказ открыт покупателем или закрыт и ждёт кассира.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — кассир подтвердил заказ.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPaid — заказ оплачен на кассе.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusDelivered — товары выданы покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pendiente",
	OrderStatusConfirmed: "Confirmado",
	OrderStatusPaid:      "Pagado",
	OrderStatusDelivered: "Entregado",
	OrderStatusCancelled: "Cancelado",
}

// OrderStatuses возвращает известные статусы в порядке жизненного цикла.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPaid,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid сообщает, известен ли статус.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label возвращает подпись статуса для экрана кассира.
// Неизвестный статус выводится как есть.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ListType — классификация позиции: купить или отложить.
type ListType string

const (
	ListTypeBuy      ListType = "buy"
	ListTypeWishlist ListType = "wishlist"
)

// Valid сообщает, является ли значение buy или wishlist.
func (l ListType) Valid() bool {
	return l == ListTypeBuy || l == ListTypeWishlist
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID генерируется локально (item-N) и не переиспользуется в рамках сессии.
	ID string `json:"id"`
	// SKU, Name и Price — снимок товара на момент добавления.
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	// Quantity — количество единиц, минимум 1.
	Quantity int    `json:"quantity"`
	Color    string `json:"color,omitempty"`
	// ListType — buy или wishlist.
	ListType ListType `json:"listType"`
}

// LineTotal возвращает price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order агрегирует состояние одной покупательской сессии.
type Order struct {
	ID       string
	Code     string
	Status   OrderStatus
	Items    []OrderItem
	Subtotal decimal.Decimal
	// Total, CreatedAt и ClosedAt заполняются только удалённым сервисом.
	Total     decimal.Decimal
	CreatedAt time.Time
	ClosedAt  time.Time
}

// BuySubtotal считает сумму price × quantity по позициям со списком buy.
func BuySubtotal(items []OrderItem) decimal.Decimal {
	return ListSubtotal(items, ListTypeBuy)
}

// ListSubtotal считает сумму по позициям заданного списка.
func ListSubtotal(items []OrderItem, list ListType) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.ListType != list {
			continue
		}
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// HasBuyItems сообщает, есть ли хотя бы одна позиция к покупке.
func HasBuyItems(items []OrderItem) bool {
	for _, item := range items {
		if item.ListType == ListTypeBuy {
			return true
		}
	}
	return false
}

// CloneItems возвращает независимую копию списка позиций.
func CloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return []OrderItem{}
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}

// BuyItems и WishlistItems нужны экрану кассира.
func (o Order) BuyItems() []OrderItem {
	return filterItems(o.Items, ListTypeBuy)
}

func (o Order) WishlistItems() []OrderItem {
	return filterItems(o.Items, ListTypeWishlist)
}

func filterItems(items []OrderItem, list ListType) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if item.ListType == list {
			out = append(out, item)
		}
	}
	return out
}
