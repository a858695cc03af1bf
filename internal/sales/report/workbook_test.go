package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/sales/domain"
)

func TestWorkbookLayout(t *testing.T) {
	store := int64(2)
	sales := []domain.Sale{
		{
			ID:            12,
			StoreID:       &store,
			PaymentMethod: domain.PaymentCash,
			Subtotal:      decimal.RequireFromString("5000"),
			Discount:      decimal.RequireFromString("500"),
			Total:         decimal.RequireFromString("4500"),
			Code:          "PROMO10",
			CreatedAt:     time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
			Items: []domain.Item{
				{ProductID: 1, Name: "Helado 1/4", Quantity: 2, UnitPrice: decimal.RequireFromString("2500"), LineTotal: decimal.RequireFromString("5000"),
					Meta: map[string]string{"sabores": "chocolate,dulce de leche", "cono": "si"}},
			},
		},
		{ID: 13, PaymentMethod: domain.PaymentCard, CreatedAt: time.Date(2026, 1, 2, 16, 0, 0, 0, time.UTC)},
	}

	file, err := Workbook(sales)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}

	salesSheet := file.Sheet[SalesSheet]
	itemsSheet := file.Sheet[ItemsSheet]
	if salesSheet == nil || itemsSheet == nil {
		t.Fatalf("missing sheets: %v", file.Sheet)
	}
	if got := len(salesSheet.Rows); got != 3 {
		t.Fatalf("expected header + 2 sale rows, got %d", got)
	}
	if got := len(itemsSheet.Rows); got != 2 {
		t.Fatalf("expected header + 1 item row, got %d", got)
	}

	first := salesSheet.Rows[1].Cells
	if first[0].Value != "VEN-000012" || first[1].Value != "2026-01-02 15:04:05" || first[4].Value != "PROMO10" {
		t.Fatalf("unexpected sale row: %q %q %q", first[0].Value, first[1].Value, first[4].Value)
	}
	if opts := itemsSheet.Rows[1].Cells[6].Value; opts != "cono=si; sabores=chocolate,dulce de leche" {
		t.Fatalf("unexpected options cell %q", opts)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty workbook")
	}
}
