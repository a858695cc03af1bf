// Package report builds spreadsheet exports of recorded sales.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/venezia/venezia-pos/internal/sales/domain"
)

const (
	SalesSheet = "Ventas"
	ItemsSheet = "Items"
	timeLayout = "2006-01-02 15:04:05"
)

var (
	salesHeaders = []string{"Receipt", "Date", "Store", "Payment", "Code", "Subtotal", "Discount", "Total"}
	itemsHeaders = []string{"Receipt", "ProductID", "Name", "Quantity", "UnitPrice", "LineTotal", "Options"}
)

// Workbook lays out one row per sale and one row per sold item.
func Workbook(sales []domain.Sale) (*xlsx.File, error) {
	file := xlsx.NewFile()

	salesSheet, err := file.AddSheet(SalesSheet)
	if err != nil {
		return nil, fmt.Errorf("add sales sheet: %w", err)
	}
	itemsSheet, err := file.AddSheet(ItemsSheet)
	if err != nil {
		return nil, fmt.Errorf("add items sheet: %w", err)
	}

	header(salesSheet, salesHeaders)
	header(itemsSheet, itemsHeaders)

	for _, s := range sales {
		row := salesSheet.AddRow()
		row.AddCell().SetString(s.ReceiptNumber())
		row.AddCell().SetString(s.CreatedAt.Format(timeLayout))
		if s.StoreID != nil {
			row.AddCell().SetInt64(*s.StoreID)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(string(s.PaymentMethod))
		row.AddCell().SetString(s.Code)
		row.AddCell().SetFloat(s.Subtotal.InexactFloat64())
		row.AddCell().SetFloat(s.Discount.InexactFloat64())
		row.AddCell().SetFloat(s.Total.InexactFloat64())

		for _, it := range s.Items {
			irow := itemsSheet.AddRow()
			irow.AddCell().SetString(s.ReceiptNumber())
			irow.AddCell().SetInt64(it.ProductID)
			irow.AddCell().SetString(it.Name)
			irow.AddCell().SetInt(it.Quantity)
			irow.AddCell().SetFloat(it.UnitPrice.InexactFloat64())
			irow.AddCell().SetFloat(it.LineTotal.InexactFloat64())
			irow.AddCell().SetString(formatMeta(it.Meta))
		}
	}

	return file, nil
}

func header(sheet *xlsx.Sheet, names []string) {
	row := sheet.AddRow()
	for _, n := range names {
		row.AddCell().SetString(n)
	}
}

func formatMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+meta[k])
	}
	return strings.Join(parts, "; ")
}
