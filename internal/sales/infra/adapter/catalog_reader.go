package adapter

import (
	"context"
	"errors"

	catalogapp "github.com/venezia/venezia-pos/internal/catalog/app"
	salesapp "github.com/venezia/venezia-pos/internal/sales/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID int64) (salesapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return salesapp.Product{}, salesapp.ErrUnknownProduct
	}
	if err != nil {
		return salesapp.Product{}, err
	}

	return salesapp.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}, nil
}
