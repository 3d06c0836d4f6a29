package domain

import "context"

// ItemPatch — изменение позиции заказа. Nil-поля не отправляются.
type ItemPatch struct {
	Quantity *int
	ListType *ListType
}

// OrderAPI описывает покупательскую часть удалённого сервиса заказов.
// Позиции адресуются индексом в полном списке заказа.
type OrderAPI interface {
	// SearchProduct ищет товар по SKU; ErrNotFound, если товара нет.
	SearchProduct(ctx context.Context, sku string) (Product, error)
	// CreateOrder открывает новый заказ и возвращает его идентификатор и код выдачи.
	CreateOrder(ctx context.Context) (Order, error)
	AddItem(ctx context.Context, orderID, sku string, quantity int, color string) error
	UpdateItem(ctx context.Context, orderID string, position int, patch ItemPatch) error
	RemoveItem(ctx context.Context, orderID string, position int) error
	CloseOrder(ctx context.Context, orderID string) error
}

// CashierAPI описывает операции кассира. Token — bearer-токен после Login.
type CashierAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetOrderByCode(ctx context.Context, code, token string) (Order, error)
	// UpdateOrderStatus возвращает статус, подтверждённый сервисом.
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus, token string) (OrderStatus, error)
}

// CatalogAPI описывает административные операции с каталогом.
type CatalogAPI interface {
	ListProducts(ctx context.Context, token string) ([]Product, error)
	CreateProduct(ctx context.Context, product Product, token string) (Product, error)
	UpdateProduct(ctx context.Context, productID string, product Product, token string) error
	ImportProducts(ctx context.Context, products []Product, token string) (int, error)
}

// SessionEvent — событие жизненного цикла покупательской сессии.
type SessionEvent struct {
	Type      string
	OrderID   string
	OrderCode string
	Subtotal  string
	ItemCount int
}

// EventPublisher публикует события сессии наружу. Ошибка публикации не
// влияет на результат операции.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event SessionEvent) error
}
