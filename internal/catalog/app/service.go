package app

import (
	"context"
	"errors"
	"strings"

	"github.com/venezia/venezia-pos/internal/catalog/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Page struct {
	Items    []domain.Product
	Total    int64
	Page     int
	PageSize int
}

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// NormalizePage applies the listing defaults: page >= 1, pageSize in [1, MaxPageSize].
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price.IsNegative() || p.CurrentStock < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	p.Price = p.Price.Round(2)

	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, search string, page, pageSize int) (Page, error) {
	page, pageSize = NormalizePage(page, pageSize)

	items, total, err := s.repo.List(ctx, ListQuery{
		Search: strings.TrimSpace(search),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []domain.Product{}
	}

	return Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
