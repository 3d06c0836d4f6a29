package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product — карточка товара из каталога магазина.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
	Colors      []string
}

// HasColor проверяет, входит ли цвет в набор цветов товара.
func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// DefaultColor возвращает первый цвет товара или пустую строку.
func (p Product) DefaultColor() string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[0]
}

// ResolveColor выбирает цвет позиции при добавлении в корзину.
// Пустой цвет заменяется первым цветом товара; у товара без цветов цвет
// всегда пустой.
func (p Product) ResolveColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if len(p.Colors) == 0 {
		if color != "" {
			return "", ErrColorInvalid
		}
		return "", nil
	}
	if color == "" {
		return p.DefaultColor(), nil
	}
	if !p.HasColor(color) {
		return "", ErrColorInvalid
	}
	return color, nil
}

// Validate проверяет поля, обязательные для создания товара.
func (p Product) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return ErrSKURequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if !p.Price.IsPositive() {
		return ErrProductPriceInvalid
	}
	return nil
}

// NormalizeCode приводит SKU или код заказа к виду, в котором их вводит
// покупатель: без пробелов по краям и в верхнем регистре.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseColors разбирает список цветов через запятую, пропуская пустые значения.
func ParseColors(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	colors := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := strings.TrimSpace(part); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}
