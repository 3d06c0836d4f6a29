package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	var resp productsResponse
	err := c.do(ctx, request{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/api/admin/products",
		token:     token,
	}, &resp)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, dto := range resp.Products {
		products = append(products, productFromDTO(dto))
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, product domain.Product, token string) (domain.Product, error) {
	var dto productDTO
	err := c.do(ctx, request{
		operation: "create_product",
		method:    http.MethodPost,
		path:      "/api/admin/products",
		body:      productToDTO(product),
		token:     token,
	}, &dto)
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDTO(dto), nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, product domain.Product, token string) error {
	return c.do(ctx, request{
		operation: "update_product",
		method:    http.MethodPut,
		path:      "/api/admin/products/" + url.PathEscape(productID),
		body:      productToDTO(product),
		token:     token,
	}, nil)
}

// ImportProducts загружает пачку товаров и возвращает число импортированных.
func (c *Client) ImportProducts(ctx context.Context, products []domain.Product, token string) (int, error) {
	body := importRequest{Products: make([]productDTO, 0, len(products))}
	for _, p := range products {
		body.Products = append(body.Products, productToDTO(p))
	}

	var resp importResponse
	err := c.do(ctx, request{
		operation: "import_products",
		method:    http.MethodPost,
		path:      "/api/admin/products/import",
		body:      body,
		token:     token,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Imported, nil
}

var _ domain.CatalogAPI = (*Client)(nil)
