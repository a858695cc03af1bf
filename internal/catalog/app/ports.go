package app

import (
	"context"

	"github.com/venezia/venezia-pos/internal/catalog/domain"
)

type ListQuery struct {
	Search string
	Limit  int
	Offset int
}

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context, q ListQuery) ([]domain.Product, int64, error)
}
