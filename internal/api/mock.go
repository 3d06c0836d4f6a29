package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// MockService — конфигурируемая заглушка API магазина для тестов и
// локальной разработки. Ошибки задаются полями *Err, вызовы считаются.
type MockService struct {
	mu sync.Mutex

	Products     map[string]domain.Product
	OrdersByCode map[string]domain.Order
	Catalog      []domain.Product
	Token        string

	SearchErr  error
	CreateErr  error
	AddErr     error
	UpdateErr  error
	RemoveErr  error
	CloseErr   error
	LoginErr   error
	LookupErr  error
	StatusErr  error
	CatalogErr error

	SearchCalls int
	CreateCalls int
	AddCalls    int
	UpdateCalls int
	RemoveCalls int
	CloseCalls  int
	LoginCalls  int
	LookupCalls int
	StatusCalls int

	// Последние аргументы для проверок в тестах.
	LastOrderID  string
	LastPosition int
	LastPatch    domain.ItemPatch
	LastColor    string
	LastQuantity int
	LastToken    string

	orderSeq int
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService() *MockService {
	return &MockService{
		Products:     make(map[string]domain.Product),
		OrdersByCode: make(map[string]domain.Order),
		Token:        "test-token",
	}
}

// AddProduct регистрирует товар для SearchProduct.
func (m *MockService) AddProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Products[p.SKU] = p
}

func (m *MockService) SearchProduct(_ context.Context, sku string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls++
	if m.SearchErr != nil {
		return domain.Product{}, m.SearchErr
	}
	p, ok := m.Products[sku]
	if !ok {
		return domain.Product{}, domain.NewRemoteError(http.StatusNotFound, "Product not found")
	}
	return p, nil
}

func (m *MockService) CreateOrder(_ context.Context) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return domain.Order{}, m.CreateErr
	}
	m.orderSeq++
	return domain.Order{
		ID:     fmt.Sprintf("order-%d", m.orderSeq),
		Code:   fmt.Sprintf("A%03d", m.orderSeq),
		Status: domain.OrderStatusPending,
	}, nil
}

func (m *MockService) AddItem(_ context.Context, orderID, _ string, quantity int, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	m.LastOrderID = orderID
	m.LastQuantity = quantity
	m.LastColor = color
	return m.AddErr
}

func (m *MockService) UpdateItem(_ context.Context, orderID string, position int, patch domain.ItemPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	m.LastOrderID = orderID
	m.LastPosition = position
	m.LastPatch = patch
	return m.UpdateErr
}

func (m *MockService) RemoveItem(_ context.Context, orderID string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	m.LastOrderID = orderID
	m.LastPosition = position
	return m.RemoveErr
}

func (m *MockService) CloseOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	m.LastOrderID = orderID
	return m.CloseErr
}

func (m *MockService) Login(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls++
	if m.LoginErr != nil {
		return "", m.LoginErr
	}
	return m.Token, nil
}

func (m *MockService) GetOrderByCode(_ context.Context, code, token string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++
	m.LastToken = token
	if m.LookupErr != nil {
		return domain.Order{}, m.LookupErr
	}
	order, ok := m.OrdersByCode[code]
	if !ok {
		return domain.Order{}, domain.NewRemoteError(http.StatusNotFound, "Order not found")
	}
	return order, nil
}

func (m *MockService) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, token string) (domain.OrderStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls++
	m.LastOrderID = orderID
	m.LastToken = token
	if m.StatusErr != nil {
		return "", m.StatusErr
	}
	return status, nil
}

func (m *MockService) ListProducts(_ context.Context, token string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = token
	if m.CatalogErr != nil {
		return nil, m.CatalogErr
	}
	out := make([]domain.Product, len(m.Catalog))
	copy(out, m.Catalog)
	return out, nil
}

func (m *MockService) CreateProduct(_ context.Context, product domain.Product, token string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = token
	if m.CatalogErr != nil {
		return domain.Product{}, m.CatalogErr
	}
	if product.ID == "" {
		product.ID = fmt.Sprintf("prod-%d", len(m.Catalog)+1)
	}
	m.Catalog = append(m.Catalog, product)
	return product, nil
}

func (m *MockService) UpdateProduct(_ context.Context, productID string, product domain.Product, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = token
	if m.CatalogErr != nil {
		return m.CatalogErr
	}
	for i := range m.Catalog {
		if m.Catalog[i].ID == productID {
			product.ID = productID
			m.Catalog[i] = product
			return nil
		}
	}
	return domain.NewRemoteError(http.StatusNotFound, "Product not found")
}

func (m *MockService) ImportProducts(_ context.Context, products []domain.Product, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastToken = token
	if m.CatalogErr != nil {
		return 0, m.CatalogErr
	}
	m.Catalog = append(m.Catalog, products...)
	return len(products), nil
}

var (
	_ domain.OrderAPI   = (*MockService)(nil)
	_ domain.CashierAPI = (*MockService)(nil)
	_ domain.CatalogAPI = (*MockService)(nil)
)
