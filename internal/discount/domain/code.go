package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Code is an admin-issued token; when DiscountType is set it also lowers a sale total.
type Code struct {
	ID            int64
	Code          string
	Type          string
	Status        Status
	StoreID       *int64
	Capacity      *int
	MaxUses       int
	Uses          int
	ExpiresAt     *time.Time
	DiscountType  DiscountType
	DiscountValue *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c Code) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

func (c Code) Exhausted() bool {
	return c.MaxUses > 0 && c.Uses >= c.MaxUses
}
