// Package session реализует контроллер покупательской сессии киоска: один
// активный заказ, синхронизированный с удалённым API и локальным хранилищем.
//
// Порядок каждой мутации: удалённый вызов → изменение в памяти → запись
// снимка целиком. При ошибке удалённого вызова ни память, ни снимок не
// меняются.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/metrics"
)

// State — состояние контроллера.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateItemSelected  State = "item-selected"
	StateClosed        State = "closed"
	StateFailed        State = "failed"
)

// Типы событий жизненного цикла сессии.
const (
	EventOrderCreated  = "order.created"
	EventOrderRestored = "order.restored"
	EventItemAdded     = "order.item_added"
	EventItemUpdated   = "order.item_updated"
	EventItemMoved     = "order.item_moved"
	EventItemRemoved   = "order.item_removed"
	EventOrderClosed   = "order.closed"
)

// Controller владеет единственным активным заказом устройства.
// Все операции сериализованы: пока идёт удалённый вызов, остальные ждут.
type Controller struct {
	mu sync.Mutex

	remote  domain.OrderAPI
	store   domain.SnapshotStore
	events  domain.EventPublisher
	logger  *log.Entry
	metrics *metrics.SessionMetrics

	state     State
	orderID   string
	orderCode string
	status    domain.OrderStatus
	items     []domain.OrderItem
	itemSeq   int
	selected  *domain.Product
}

// Option настраивает Controller.
type Option func(*Controller)

// WithEventPublisher включает публикацию событий сессии.
func WithEventPublisher(events domain.EventPublisher) Option {
	return func(c *Controller) {
		c.events = events
	}
}

// WithMetrics подключает prometheus-метрики сессии.
func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// NewController создаёт контроллер в состоянии uninitialized. Start нужно
// вызвать явно.
func NewController(remote domain.OrderAPI, store domain.SnapshotStore, logger *log.Entry, opts ...Option) *Controller {
	if logger == nil {
		logger = log.New().WithField("component", "session")
	}
	c := &Controller{
		remote: remote,
		store:  store,
		logger: logger,
		state:  StateUninitialized,
		items:  []domain.OrderItem{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start восстанавливает заказ из снимка или открывает новый на сервере.
// Повторный вызов допустим только после неудачи.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUninitialized && c.state != StateFailed {
		return domain.ErrAlreadyStarted
	}
	return c.start(ctx)
}

func (c *Controller) start(ctx context.Context) (err error) {
	defer func() { c.metrics.RecordOperation("start", err) }()

	snapshot, ok, err := c.store.LoadOrder(ctx)
	if err != nil {
		c.state = StateFailed
		c.metrics.RecordSessionFailed()
		c.logger.WithError(err).Error("failed to load order snapshot")
		return fmt.Errorf("%w: load order: %w", domain.ErrPersistence, err)
	}

	if ok && snapshot.OrderID != "" {
		c.restore(snapshot)
		c.metrics.RecordSessionStarted(true)
		c.logger.WithFields(log.Fields{
			"order_id":   c.orderID,
			"order_code": c.orderCode,
			"items":      len(c.items),
		}).Info("order session restored")
		c.publish(ctx, EventOrderRestored)
		return nil
	}

	order, err := c.remote.CreateOrder(ctx)
	if err != nil {
		c.state = StateFailed
		c.metrics.RecordSessionFailed()
		c.logger.WithError(err).Warn("failed to create order")
		return err
	}

	c.orderID = order.ID
	c.orderCode = order.Code
	c.status = domain.OrderStatusPending
	c.items = []domain.OrderItem{}
	c.itemSeq = 1
	c.selected = nil
	c.state = StateReady
	c.metrics.RecordSessionStarted(false)
	c.logger.WithFields(log.Fields{
		"order_id":   c.orderID,
		"order_code": c.orderCode,
	}).Info("order created")

	if err := c.persist(ctx); err != nil {
		return err
	}
	c.publish(ctx, EventOrderCreated)
	return nil
}

func (c *Controller) restore(snapshot domain.Snapshot) {
	c.orderID = snapshot.OrderID
	c.orderCode = snapshot.OrderCode
	c.status = snapshot.Status
	if !c.status.Valid() {
		c.status = domain.OrderStatusPending
	}
	c.items = domain.CloneItems(snapshot.Items)
	c.itemSeq = snapshot.NextItemSeq()
	if c.itemSeq < 1 {
		c.itemSeq = 1
	}
	c.selected = nil
	c.state = StateReady
	c.updateCartGauge()
}

// SearchProduct ищет товар по SKU и при успехе выбирает его.
// При ошибке текущее состояние не меняется.
func (c *Controller) SearchProduct(ctx context.Context, sku string) (_ domain.Product, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("search_product", err) }()

	if err := c.requireActive(); err != nil {
		return domain.Product{}, err
	}
	sku = domain.NormalizeCode(sku)
	if sku == "" {
		return domain.Product{}, domain.ErrSKURequired
	}

	product, err := c.remote.SearchProduct(ctx, sku)
	if err != nil {
		c.logger.WithError(err).WithField("sku", sku).Info("product search failed")
		return domain.Product{}, err
	}

	c.selectProduct(product)
	return product, nil
}

// SelectProduct выбирает уже найденный товар.
func (c *Controller) SelectProduct(product domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive(); err != nil {
		return err
	}
	c.selectProduct(product)
	return nil
}

func (c *Controller) selectProduct(product domain.Product) {
	product.Colors = append([]string(nil), product.Colors...)
	c.selected = &product
	c.state = StateItemSelected
}

// CancelSelection сбрасывает выбранный товар без других изменений.
func (c *Controller) CancelSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive(); err != nil {
		return err
	}
	c.selected = nil
	c.state = StateReady
	return nil
}

// AddItem добавляет выбранный товар в список покупок. Пустой цвет
// заменяется первым цветом товара. При ошибке выбор сохраняется.
func (c *Controller) AddItem(ctx context.Context, quantity int, color string) (_ domain.OrderItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("add_item", err) }()

	if err := c.requireActive(); err != nil {
		return domain.OrderItem{}, err
	}
	if c.selected == nil {
		return domain.OrderItem{}, domain.ErrNothingSelected
	}
	if quantity < 1 {
		return domain.OrderItem{}, domain.ErrQuantityInvalid
	}
	product := *c.selected
	color, err = product.ResolveColor(color)
	if err != nil {
		return domain.OrderItem{}, err
	}

	if err := c.remote.AddItem(ctx, c.orderID, product.SKU, quantity, color); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"order_id": c.orderID,
			"sku":      product.SKU,
		}).Warn("failed to add item")
		return domain.OrderItem{}, err
	}

	item := domain.OrderItem{
		ID:       domain.ItemID(c.itemSeq),
		SKU:      product.SKU,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: quantity,
		Color:    color,
		ListType: domain.ListTypeBuy,
	}
	c.itemSeq++
	c.items = append(c.items, item)
	c.selected = nil
	c.state = StateReady
	c.logger.WithFields(log.Fields{
		"order_id": c.orderID,
		"item_id":  item.ID,
		"sku":      item.SKU,
		"quantity": item.Quantity,
	}).Info("item added")

	if err := c.persist(ctx); err != nil {
		return item, err
	}
	c.publish(ctx, EventItemAdded)
	return item, nil
}

// UpdateQuantity меняет количество позиции; значения меньше 1 поднимаются до 1.
func (c *Controller) UpdateQuantity(ctx context.Context, position, quantity int) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("update_quantity", err) }()

	return c.updateItem(ctx, position, domain.ItemPatch{Quantity: &quantity})
}

// MoveItem переносит позицию между списком покупок и списком желаний.
// Остальные поля позиции не меняются.
func (c *Controller) MoveItem(ctx context.Context, position int, list domain.ListType) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("move_item", err) }()

	return c.updateItem(ctx, position, domain.ItemPatch{ListType: &list})
}

// UpdateItem меняет количество и список позиции одним запросом к серверу:
// либо применяются оба поля, либо ни одно.
func (c *Controller) UpdateItem(ctx context.Context, position int, patch domain.ItemPatch) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("update_item", err) }()

	return c.updateItem(ctx, position, patch)
}

func (c *Controller) updateItem(ctx context.Context, position int, patch domain.ItemPatch) error {
	if err := c.requireActive(); err != nil {
		return err
	}
	if patch.Quantity == nil && patch.ListType == nil {
		return domain.ErrEmptyPatch
	}
	if patch.ListType != nil && !patch.ListType.Valid() {
		return domain.ErrListTypeInvalid
	}
	id, err := c.itemAt(position)
	if err != nil {
		return err
	}

	var quantity int
	if patch.Quantity != nil {
		quantity = max(*patch.Quantity, 1)
		patch.Quantity = &quantity
	}
	var list domain.ListType
	if patch.ListType != nil {
		list = *patch.ListType
		patch.ListType = &list
	}

	if err := c.remote.UpdateItem(ctx, c.orderID, position, patch); err != nil {
		c.logItemFailure(err, position, "failed to update item")
		return err
	}

	item := &c.items[c.indexOf(id)]
	if patch.Quantity != nil {
		item.Quantity = quantity
	}
	if patch.ListType != nil {
		item.ListType = list
	}
	if err := c.persist(ctx); err != nil {
		return err
	}

	if patch.Quantity != nil {
		c.publish(ctx, EventItemUpdated)
	} else {
		c.publish(ctx, EventItemMoved)
	}
	return nil
}

// RemoveItem удаляет позицию; следующие позиции сдвигаются на одну.
func (c *Controller) RemoveItem(ctx context.Context, position int) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("remove_item", err) }()

	if err := c.requireActive(); err != nil {
		return err
	}
	id, err := c.itemAt(position)
	if err != nil {
		return err
	}

	if err := c.remote.RemoveItem(ctx, c.orderID, position); err != nil {
		c.logItemFailure(err, position, "failed to remove item")
		return err
	}

	idx := c.indexOf(id)
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if err := c.persist(ctx); err != nil {
		return err
	}
	c.publish(ctx, EventItemRemoved)
	return nil
}

// CloseOrder закрывает заказ. Без позиций в списке покупок закрыть нельзя,
// сервер в этом случае не вызывается.
func (c *Controller) CloseOrder(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.metrics.RecordOperation("close_order", err) }()

	if err := c.requireActive(); err != nil {
		return err
	}
	if !domain.HasBuyItems(c.items) {
		return domain.ErrNoBuyItems
	}

	if err := c.remote.CloseOrder(ctx, c.orderID); err != nil {
		c.logger.WithError(err).WithField("order_id", c.orderID).Warn("failed to close order")
		return err
	}

	c.selected = nil
	c.state = StateClosed
	c.metrics.RecordSessionClosed()
	c.logger.WithFields(log.Fields{
		"order_id":   c.orderID,
		"order_code": c.orderCode,
		"subtotal":   domain.BuySubtotal(c.items).StringFixed(2),
	}).Info("order closed")

	// Заказ уже закрыт на сервере, поэтому состояние в памяти остаётся
	// closed, даже если снимок стереть не удалось.
	clearErr := c.store.ClearOrder(ctx)
	c.publish(ctx, EventOrderClosed)
	if clearErr != nil {
		c.logger.WithError(clearErr).WithField("order_id", c.orderID).Error("failed to clear order snapshot")
		return fmt.Errorf("%w: clear order: %w", domain.ErrPersistence, clearErr)
	}
	return nil
}

// StartNewOrder забывает текущий заказ и открывает новый. Если снимок не
// удалось стереть, текущая сессия остаётся как была.
func (c *Controller) StartNewOrder(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ClearOrder(ctx); err != nil {
		c.logger.WithError(err).Error("failed to clear order snapshot")
		return fmt.Errorf("%w: clear order: %w", domain.ErrPersistence, err)
	}

	c.orderID = ""
	c.orderCode = ""
	c.status = ""
	c.items = []domain.OrderItem{}
	c.itemSeq = 0
	c.selected = nil
	c.state = StateUninitialized
	c.updateCartGauge()

	return c.start(ctx)
}

// State возвращает текущее состояние контроллера.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Order возвращает копию активного заказа.
func (c *Controller) Order() domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderLocked()
}

func (c *Controller) orderLocked() domain.Order {
	subtotal := domain.BuySubtotal(c.items)
	return domain.Order{
		ID:       c.orderID,
		Code:     c.orderCode,
		Status:   c.status,
		Items:    domain.CloneItems(c.items),
		Subtotal: subtotal,
		Total:    subtotal,
	}
}

// View — согласованный срез сессии для отображения.
type View struct {
	State    State
	Order    domain.Order
	Selected *domain.Product
}

// View возвращает состояние, заказ и выбранный товар под одной блокировкой.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{State: c.state, Order: c.orderLocked()}
	if c.selected != nil {
		product := *c.selected
		product.Colors = append([]string(nil), product.Colors...)
		view.Selected = &product
	}
	return view
}

// Items возвращает копию списка позиций в порядке добавления.
func (c *Controller) Items() []domain.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneItems(c.items)
}

// Selected возвращает выбранный товар, если он есть.
func (c *Controller) Selected() (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return domain.Product{}, false
	}
	product := *c.selected
	product.Colors = append([]string(nil), product.Colors...)
	return product, true
}

// Subtotal — сумма по позициям списка покупок.
func (c *Controller) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.BuySubtotal(c.items)
}

// ItemPosition возвращает текущую позицию позиции заказа по её id.
func (c *Controller) ItemPosition(id string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	return idx, idx >= 0
}

func (c *Controller) requireActive() error {
	switch c.state {
	case StateReady, StateItemSelected:
		return nil
	case StateClosed:
		return domain.ErrSessionClosed
	default:
		return domain.ErrSessionNotReady
	}
}

func (c *Controller) itemAt(position int) (string, error) {
	if position < 0 || position >= len(c.items) {
		return "", fmt.Errorf("%w: position %d", domain.ErrItemNotFound, position)
	}
	return c.items[position].ID, nil
}

func (c *Controller) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist пишет снимок целиком. Ошибка записи не откатывает изменения в
// памяти: сервер их уже подтвердил.
func (c *Controller) persist(ctx context.Context) error {
	c.updateCartGauge()

	snapshot := domain.NewSnapshot(c.orderID, c.orderCode, c.items, c.itemSeq)
	if err := c.store.SaveOrder(ctx, snapshot); err != nil {
		c.logger.WithError(err).WithField("order_id", c.orderID).Error("failed to persist order snapshot")
		return fmt.Errorf("%w: save order: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (c *Controller) updateCartGauge() {
	buy, wishlist := 0, 0
	for _, item := range c.items {
		if item.ListType == domain.ListTypeBuy {
			buy++
		} else {
			wishlist++
		}
	}
	c.metrics.SetCartItems(buy, wishlist)
}

func (c *Controller) publish(ctx context.Context, eventType string) {
	if c.events == nil {
		return
	}
	event := domain.SessionEvent{
		Type:      eventType,
		OrderID:   c.orderID,
		OrderCode: c.orderCode,
		Subtotal:  domain.BuySubtotal(c.items).StringFixed(2),
		ItemCount: len(c.items),
	}
	if err := c.events.PublishSessionEvent(ctx, event); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"order_id": c.orderID,
			"event":    eventType,
		}).Warn("failed to publish session event")
	}
}

func (c *Controller) logItemFailure(err error, position int, msg string) {
	c.logger.WithError(err).WithFields(log.Fields{
		"order_id": c.orderID,
		"position": position,
	}).Warn(msg)
}
