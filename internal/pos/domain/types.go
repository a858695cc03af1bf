// Package domain holds the cashier-side types shared by the cart, the offline
// queue and the remote clients.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/api/posv1"
)

type ProductType string

const (
	TypeHelado ProductType = "helado"
	TypeOtro   ProductType = "otro"
)

type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Type     ProductType
	Category string
	Stock    int
}

// Meta carries free-form line attributes such as flavors or format. Nil and
// empty are the same value.
type Meta map[string]string

func (m Meta) Equal(o Meta) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (m Meta) Clone() Meta {
	if len(m) == 0 {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type CartItem struct {
	ID        string          `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Type      ProductType     `json:"type,omitempty"`
	Meta      Meta            `json:"meta,omitempty"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// CodeInfo is what the backend answered for a code. DiscountAmount, when
// present, wins over deriving the discount from DiscountType and DiscountValue.
type CodeInfo struct {
	Code           string           `json:"code"`
	Type           string           `json:"type,omitempty"`
	DiscountType   DiscountType     `json:"discount_type,omitempty"`
	DiscountValue  *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	StoreID        *int64           `json:"store_id,omitempty"`
}

// Clone returns a copy whose pointer fields point at fresh values.
func (c *CodeInfo) Clone() *CodeInfo {
	if c == nil {
		return nil
	}
	out := *c
	out.DiscountValue = clonePtr(c.DiscountValue)
	out.DiscountAmount = clonePtr(c.DiscountAmount)
	out.ExpiresAt = clonePtr(c.ExpiresAt)
	out.StoreID = clonePtr(c.StoreID)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type CartState struct {
	Items          []CartItem      `json:"items"`
	Code           string          `json:"code,omitempty"`
	CodeInfo       *CodeInfo       `json:"code_info,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	SelectedItemID string          `json:"selected_item_id,omitempty"`
}

func (s CartState) Empty() bool { return len(s.Items) == 0 }

// Clone returns a copy that shares no maps, slices or pointers with s.
func (s CartState) Clone() CartState {
	out := s
	out.Items = make([]CartItem, len(s.Items))
	for i, it := range s.Items {
		it.Meta = it.Meta.Clone()
		out.Items[i] = it
	}
	out.CodeInfo = s.CodeInfo.Clone()
	return out
}

// SalePayload is the exact sale request body sent to the backend and kept in
// the offline queue.
type SalePayload = posv1.SubmitSaleRequest

type SaleResult struct {
	SaleID        int64  `json:"sale_id"`
	ReceiptNumber string `json:"receipt_number"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

type QueuedSale struct {
	ID        string      `json:"id"`
	Payload   SalePayload `json:"payload"`
	TS        time.Time   `json:"ts"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
}
