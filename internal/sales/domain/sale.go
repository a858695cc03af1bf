package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentTransfer    PaymentMethod = "transfer"
	PaymentMercadoPago PaymentMethod = "mercadopago"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMercadoPago:
		return true
	}
	return false
}

type Sale struct {
	ID            int64
	ClientRef     string
	StoreID       *int64
	UserID        string
	Items         []Item
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Code          string
	CreatedAt     time.Time
}

func (s Sale) ReceiptNumber() string {
	return ReceiptNumber(s.ID)
}

type Item struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Meta      map[string]string
}

type CreateSaleRequest struct {
	ClientRef     string
	StoreID       int64
	UserID        string
	Items         []ItemRequest
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Code          string
	CreatedAt     time.Time
}

type ItemRequest struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Meta      map[string]string
}

type SaleResponse struct {
	SaleID        int64  `json:"sale_id"`
	ReceiptNumber string `json:"receipt_number"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

func ReceiptNumber(id int64) string {
	return fmt.Sprintf("VEN-%06d", id)
}
