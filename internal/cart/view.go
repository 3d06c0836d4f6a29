// Package cart строит представление корзины по вкладкам "купить" и
// "список желаний". Функции чистые: на вход список позиций, на выход
// готовая для отображения структура.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// Line — позиция во вкладке. Position — индекс в общем списке заказа,
// именно он передаётся в операции изменения и удаления.
type Line struct {
	Position int              `json:"position"`
	Item     domain.OrderItem `json:"item"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

// View — содержимое одной вкладки корзины.
type View struct {
	Tab           domain.ListType `json:"tab"`
	Lines         []Line          `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	BuyCount      int             `json:"buyCount"`
	WishlistCount int             `json:"wishlistCount"`
	CanClose      bool            `json:"canClose"`
}

// Project фильтрует позиции по вкладке, сохраняя исходный порядок и позиции.
// Неизвестная вкладка трактуется как buy.
func Project(items []domain.OrderItem, tab domain.ListType) View {
	if !tab.Valid() {
		tab = domain.ListTypeBuy
	}

	view := View{
		Tab:      tab,
		Lines:    []Line{},
		Subtotal: decimal.Zero,
	}
	for position, item := range items {
		switch item.ListType {
		case domain.ListTypeBuy:
			view.BuyCount++
		case domain.ListTypeWishlist:
			view.WishlistCount++
		}
		if item.ListType != tab {
			continue
		}

		line := Line{
			Position: position,
			Item:     item,
			Subtotal: item.LineTotal(),
		}
		view.Lines = append(view.Lines, line)
		view.Subtotal = view.Subtotal.Add(line.Subtotal)
	}
	view.CanClose = view.BuyCount > 0
	return view
}

// CanClose сообщает, можно ли закрыть заказ: нужна хотя бы одна позиция buy.
func CanClose(items []domain.OrderItem) bool {
	return domain.HasBuyItems(items)
}

// Empty сообщает, что во вкладке нет позиций.
func (v View) Empty() bool {
	return len(v.Lines) == 0
}
