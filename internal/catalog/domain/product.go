package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeHelado = "helado"
	TypeOtro   = "otro"

	categoryHelados = "Helados"
)

type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        decimal.Decimal
	CurrentStock int
	CategoryID   *int64
	Category     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Type classifies the product for the POS line: ice cream or anything else.
func (p Product) Type() string {
	if strings.EqualFold(strings.TrimSpace(p.Category), categoryHelados) {
		return TypeHelado
	}
	return TypeOtro
}
