// Package remote holds the wire conversions shared by the HTTP and gRPC
// clients of the backend.
package remote

import (
	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/pos/discount"
	"github.com/venezia/venezia-pos/internal/pos/domain"
)

func ProductFromWire(p posv1.Product) domain.Product {
	typ := domain.ProductType(p.Type)
	if typ == "" {
		typ = domain.TypeOtro
	}
	return domain.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Type:     typ,
		Category: p.Category,
		Stock:    p.CurrentStock,
	}
}

func CodeInfoFromWire(r posv1.ValidateCodeResponse) domain.CodeInfo {
	return domain.CodeInfo{
		Code:           r.Code,
		Type:           r.Type,
		DiscountType:   domain.DiscountType(r.DiscountType),
		DiscountValue:  r.DiscountValue,
		DiscountAmount: r.DiscountAmount,
		ExpiresAt:      r.ExpiresAt,
		StoreID:        r.StoreID,
	}
}

// CodeRejection maps a backend error code to the resolver's rejection, or nil
// when the code is not a rejection.
func CodeRejection(code string) error {
	switch code {
	case posv1.CodeNotFound:
		return discount.ErrCodeNotFound
	case posv1.CodeDisabled:
		return discount.ErrCodeDisabled
	case posv1.CodeExpired:
		return discount.ErrCodeExpired
	case posv1.CodeCapacityReached:
		return discount.ErrCodeExhausted
	case posv1.CodeStoreMismatch:
		return discount.ErrCodeStoreMismatch
	case posv1.CodeInvalid:
		return discount.ErrCodeRequired
	default:
		return nil
	}
}
