package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemIDPrefix — префикс локально сгенерированных идентификаторов позиций.
const ItemIDPrefix = "item-"

// Snapshot — полное состояние активного заказа в локальном хранилище.
// Всегда перезаписывается целиком.
type Snapshot struct {
	OrderID   string          `json:"orderId"`
	OrderCode string          `json:"orderCode"`
	Items     []OrderItem     `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Status    OrderStatus     `json:"status"`
	// ItemSeq — следующий номер для item-N; 0 у снимков старого формата.
	ItemSeq int `json:"itemSeq,omitempty"`
}

// NewSnapshot собирает снимок заказа со статусом pending и пересчитанным
// subtotal по позициям buy.
func NewSnapshot(orderID, orderCode string, items []OrderItem, itemSeq int) Snapshot {
	items = CloneItems(items)
	return Snapshot{
		OrderID:   orderID,
		OrderCode: orderCode,
		Items:     items,
		Subtotal:  BuySubtotal(items),
		Status:    OrderStatusPending,
		ItemSeq:   itemSeq,
	}
}

// NextItemSeq возвращает номер, с которого продолжать генерацию item-N.
// Для старых снимков без itemSeq номер выводится из максимального суффикса.
func (s Snapshot) NextItemSeq() int {
	next := s.ItemSeq
	for _, item := range s.Items {
		if n, ok := parseItemSeq(item.ID); ok && n+1 > next {
			next = n + 1
		}
	}
	return next
}

// ItemID форматирует локальный идентификатор позиции.
func ItemID(seq int) string {
	return ItemIDPrefix + strconv.Itoa(seq)
}

func parseItemSeq(id string) (int, bool) {
	if !strings.HasPrefix(id, ItemIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, ItemIDPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
