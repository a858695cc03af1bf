// Package catalog is the register's read-only view of the product catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrProductNotFound = errors.New("product not found")

type Query struct {
	Search   string
	Page     int
	PageSize int
}

type Page struct {
	Items    []domain.Product
	Total    int64
	Page     int
	PageSize int
}

type Backend interface {
	ListProducts(ctx context.Context, q Query) (Page, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

type Client struct {
	backend Backend
}

func NewClient(backend Backend) *Client {
	return &Client{backend: backend}
}

// Normalize applies the same paging defaults as the backend.
func Normalize(q Query) Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	q = Normalize(q)
	page, err := c.backend.ListProducts(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("search products: %w", err)
	}
	if page.Items == nil {
		page.Items = []domain.Product{}
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.PageSize == 0 {
		page.PageSize = q.PageSize
	}
	return page, nil
}

func (c *Client) Get(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrProductNotFound
	}
	p, err := c.backend.GetProduct(ctx, id)
	if errors.Is(err, ErrProductNotFound) {
		return domain.Product{}, err
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}
