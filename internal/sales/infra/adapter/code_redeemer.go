package adapter

import (
	"context"

	discountapp "github.com/venezia/venezia-pos/internal/discount/app"
)

type DiscountCodeRedeemer struct {
	svc *discountapp.Service
}

func NewDiscountCodeRedeemer(svc *discountapp.Service) *DiscountCodeRedeemer {
	return &DiscountCodeRedeemer{svc: svc}
}

func (r *DiscountCodeRedeemer) Redeem(ctx context.Context, code string, saleID, storeID int64) error {
	return r.svc.Redeem(ctx, code, saleID, storeID)
}
