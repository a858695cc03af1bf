// Package ticket turns a finalized cart snapshot into a printable receipt.
package ticket

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

const PendingMarker = "PENDIENTE"

type Line struct {
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Options   []string
}

type Ticket struct {
	SaleID        int64
	ReceiptNumber string
	// Pending is set for sales that were queued instead of confirmed.
	Pending       bool
	Items         []Line
	Code          string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	IssuedAt      time.Time
}

// New projects snap into a ticket. A nil result marks the ticket pending.
func New(snap domain.CartState, result *domain.SaleResult, paymentMethod string, issuedAt time.Time) Ticket {
	t := Ticket{
		Code:          snap.Code,
		Subtotal:      snap.Subtotal,
		Discount:      snap.Discount,
		Total:         snap.Total,
		PaymentMethod: paymentMethod,
		IssuedAt:      issuedAt,
		Items:         make([]Line, 0, len(snap.Items)),
	}
	if result != nil {
		t.SaleID = result.SaleID
		t.ReceiptNumber = result.ReceiptNumber
	} else {
		t.Pending = true
	}

	for _, it := range snap.Items {
		t.Items = append(t.Items, Line{
			Name:      it.Name,
			Qty:       it.Qty,
			UnitPrice: it.Price,
			Total:     it.LineTotal(),
			Options:   options(it.Meta),
		})
	}
	return t
}

func options(meta domain.Meta) []string {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+meta[k])
	}
	return out
}

type Renderer struct {
	Width  int
	Header string
	Footer string
}

func NewRenderer() *Renderer {
	return &Renderer{
		Width:  40,
		Header: "HELADERIA VENEZIA",
		Footer: "Gracias por su compra!",
	}
}

func (r *Renderer) Render(t Ticket) string {
	w := r.Width
	if w < 24 {
		w = 24
	}

	var lines []string
	lines = append(lines, strings.Repeat("═", w))
	lines = append(lines, center(r.Header, w))
	lines = append(lines, strings.Repeat("═", w))

	if t.Pending {
		lines = append(lines, "Ticket: "+PendingMarker)
		lines = append(lines, "Venta en cola, se enviara al reconectar")
	} else {
		lines = append(lines, "Ticket: "+t.ReceiptNumber)
		lines = append(lines, fmt.Sprintf("Venta #%d", t.SaleID))
	}
	lines = append(lines, "Fecha: "+t.IssuedAt.Format("02/01/2006 15:04"))
	lines = append(lines, strings.Repeat("─", w))

	for _, it := range t.Items {
		lines = append(lines, fmt.Sprintf("%d x %s @ %s", it.Qty, it.Name, money(it.UnitPrice)))
		for _, opt := range it.Options {
			lines = append(lines, "    "+opt)
		}
		lines = append(lines, right(money(it.Total), w))
	}

	lines = append(lines, strings.Repeat("─", w))
	lines = append(lines, row("Subtotal:", money(t.Subtotal), w))
	if t.Code != "" || t.Discount.IsPositive() {
		label := "Descuento:"
		if t.Code != "" {
			label = fmt.Sprintf("Descuento (%s):", t.Code)
		}
		lines = append(lines, row(label, "-"+money(t.Discount), w))
	}
	lines = append(lines, strings.Repeat("─", w))
	lines = append(lines, row("TOTAL:", money(t.Total), w))
	if t.PaymentMethod != "" {
		lines = append(lines, "Pago: "+t.PaymentMethod)
	}
	lines = append(lines, strings.Repeat("═", w))
	lines = append(lines, center(r.Footer, w))
	lines = append(lines, strings.Repeat("═", w))

	return strings.Join(lines, "\n")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func row(label, value string, w int) string {
	pad := w - len([]rune(label)) - len([]rune(value))
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}

func right(s string, w int) string {
	n := len([]rune(s))
	if n >= w {
		return s
	}
	return strings.Repeat(" ", w-n) + s
}

func center(s string, w int) string {
	n := len([]rune(s))
	if n >= w {
		return s
	}
	return strings.Repeat(" ", (w-n)/2) + s
}
