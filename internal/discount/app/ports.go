package app

import (
	"context"

	"github.com/venezia/venezia-pos/internal/discount/domain"
)

type ListFilter struct {
	Search  string
	Status  string
	StoreID int64
	Limit   int
	Offset  int
}

type CodeRepo interface {
	Create(ctx context.Context, c domain.Code) (domain.Code, error)
	GetByCode(ctx context.Context, code string) (domain.Code, error)
	List(ctx context.Context, f ListFilter) ([]domain.Code, int64, error)
	SetStatus(ctx context.Context, id int64, status domain.Status) (domain.Code, error)
	// Redeem locks the code row, runs check against it and records one use for
	// saleID. Recording the same sale twice is a no-op.
	Redeem(ctx context.Context, code string, saleID int64, storeID *int64, check func(domain.Code) error) error
}
