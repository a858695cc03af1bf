// Package posv1 is the wire contract shared by the backend (posd) and the
// cashier client: REST bodies, the response envelope and the gRPC services.
package posv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Error codes carried in Envelope.Error.Code and in gRPC status messages.
const (
	CodeInvalid         = "INVALID"
	CodeNotFound        = "NOT_FOUND"
	CodeDisabled        = "DISABLED"
	CodeExpired         = "EXPIRED"
	CodeCapacityReached = "CAPACITY_REACHED"
	CodeStoreMismatch   = "STORE_MISMATCH"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeServerError     = "SERVER_ERROR"
)

type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Msg
}

// Envelope is the body of every REST response: {success, data, error}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   *Error `json:"error"`
}

func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

func Fail(code, msg string) Envelope[any] {
	return Envelope[any]{Success: false, Error: &Error{Code: code, Msg: msg}}
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"current_stock"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	Category     string          `json:"category,omitempty"`
	Type         string          `json:"type,omitempty"`
	Active       bool            `json:"active"`
}

type ListProductsRequest struct {
	Search   string `json:"search,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

type ListProductsResponse struct {
	Items    []Product `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

type GetProductRequest struct {
	ID int64 `json:"id"`
}

type GetProductResponse struct {
	Product Product `json:"product"`
}

type ValidateCodeRequest struct {
	Code    string `json:"code"`
	StoreID int64  `json:"store_id,omitempty"`
}

type ValidateCodeResponse struct {
	Code           string           `json:"code"`
	Type           string           `json:"type,omitempty"`
	Status         string           `json:"status,omitempty"`
	DiscountType   string           `json:"discount_type,omitempty"`
	DiscountValue  *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	StoreID        *int64           `json:"store_id,omitempty"`
}

type SaleItem struct {
	ProductID int64             `json:"product_id"`
	Name      string            `json:"name,omitempty"`
	Quantity  int               `json:"quantity"`
	Price     decimal.Decimal   `json:"price"`
	Meta      map[string]string `json:"meta,omitempty"`
}

type SubmitSaleRequest struct {
	ClientRef     string          `json:"client_ref,omitempty"`
	StoreID       int64           `json:"store_id,omitempty"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Code          string          `json:"code,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SubmitSaleResponse struct {
	Success       bool   `json:"success"`
	SaleID        int64  `json:"sale_id,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}
