package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/sales/domain"
)

type SaleRepo interface {
	// CreateSaleTx writes the sale, its items and the stock decrement in one transaction.
	CreateSaleTx(ctx context.Context, sale domain.Sale) (domain.Sale, error)
	FindByClientRef(ctx context.Context, ref string) (domain.Sale, error)
	Recent(ctx context.Context, limit int) ([]domain.Sale, error)
	Range(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, productID int64) (Product, error)
}

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

type CodeRedeemer interface {
	Redeem(ctx context.Context, code string, saleID, storeID int64) error
}

type Notifier interface {
	SaleCreated(sale domain.Sale)
}
