// Package admin — управление каталогом товаров из панели администратора.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

// TokenSource отдаёт bearer-токен из общего слота учётных данных.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ProductForm — сырые значения формы товара.
type ProductForm struct {
	SKU         string
	Name        string
	Price       string
	Description string
	Image       string
	// Colors — цвета через запятую, например "Rojo, Azul".
	Colors string
}

// Product разбирает форму. Цена должна быть положительным числом.
func (f ProductForm) Product() (domain.Product, error) {
	product := domain.Product{
		SKU:         domain.NormalizeCode(f.SKU),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Image:       strings.TrimSpace(f.Image),
		Colors:      domain.ParseColors(f.Colors),
	}

	raw := strings.TrimSpace(f.Price)
	if raw == "" {
		return domain.Product{}, domain.ErrProductPriceInvalid
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrProductPriceInvalid, raw)
	}
	product.Price = price

	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// Service выполняет операции каталога.
type Service struct {
	remote domain.CatalogAPI
	tokens TokenSource
	logger *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(remote domain.CatalogAPI, tokens TokenSource, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "admin")
	}
	return &Service{remote: remote, tokens: tokens, logger: logger}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.remote.ListProducts(ctx, token)
}

// CreateProduct проверяет товар локально и создаёт его на сервере.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	product.SKU = domain.NormalizeCode(product.SKU)
	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	created, err := s.remote.CreateProduct(ctx, product, token)
	if err != nil {
		s.logger.WithError(err).WithField("sku", product.SKU).Warn("failed to create product")
		return domain.Product{}, err
	}
	s.logger.WithFields(log.Fields{
		"product_id": created.ID,
		"sku":        created.SKU,
	}).Info("product created")
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, product domain.Product) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrProductIDRequired
	}
	product.SKU = domain.NormalizeCode(product.SKU)
	if err := product.Validate(); err != nil {
		return err
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return s.remote.UpdateProduct(ctx, productID, product, token)
}

// ImportProducts загружает пачку товаров. Невалидный товар отклоняет всю
// пачку до обращения к серверу; ошибка указывает его номер (с 1).
func (s *Service) ImportProducts(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	batch := make([]domain.Product, len(products))
	for i, p := range products {
		p.SKU = domain.NormalizeCode(p.SKU)
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("product %d: %w", i+1, err)
		}
		batch[i] = p
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}

	imported, err := s.remote.ImportProducts(ctx, batch, token)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("imported", imported).Info("products imported")
	return imported, nil
}
