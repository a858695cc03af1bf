package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/discount"
	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/internal/pos/ticket"
	"github.com/venezia/venezia-pos/pkg/config"
	"github.com/venezia/venezia-pos/pkg/kvstore"
	"github.com/venezia/venezia-pos/pkg/logger"
)

type stubBackend struct {
	mu      sync.Mutex
	offline bool
	sales   int64
}

func (b *stubBackend) ListProducts(_ context.Context, q catalog.Query) (catalog.Page, error) {
	return catalog.Page{Items: []domain.Product{{ID: 5, Name: "Cucurucho", Price: decimal.NewFromInt(2000), Type: domain.TypeHelado}}, Total: 1, Page: q.Page, PageSize: q.PageSize}, nil
}

func (b *stubBackend) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	if id != 5 {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	return domain.Product{ID: 5, Name: "Cucurucho", Price: decimal.NewFromInt(2000), Type: domain.TypeHelado}, nil
}

func (b *stubBackend) ValidateCode(_ context.Context, code string, _ int64) (domain.CodeInfo, error) {
	if code != "FIJO500" {
		return domain.CodeInfo{}, discount.ErrCodeNotFound
	}
	v := decimal.NewFromInt(500)
	return domain.CodeInfo{Code: code, DiscountType: domain.DiscountAmount, DiscountValue: &v}, nil
}

func (b *stubBackend) SubmitSale(_ context.Context, _ domain.SalePayload) (domain.SaleResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.offline {
		return domain.SaleResult{}, errors.New("connection refused")
	}
	b.sales++
	return domain.SaleResult{SaleID: b.sales, ReceiptNumber: fmt.Sprintf("VEN-%06d", b.sales)}, nil
}

func (b *stubBackend) setOffline(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offline = v
}

type harness struct {
	kv *kvstore.Memory
	be *stubBackend
}

func newHarness() *harness {
	return &harness{kv: kvstore.NewMemory(), be: &stubBackend{}}
}

// run executes one CLI invocation; state survives between runs through kv.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	open := func(ctx context.Context) (*app, error) {
		return newApp(ctx, h.kv, h.be, config.POSConfig{StoreID: 1, SubmitTimeout: time.Second}, logger.Discard()), nil
	}
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSaleFlowAcrossInvocations(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "search", "cucu")
	if err != nil || !strings.Contains(out, "Cucurucho") {
		t.Fatalf("search: %q %v", out, err)
	}

	if _, err := h.run(t, "add", "5", "--qty", "2", "--meta", "sabor=frutilla"); err != nil {
		t.Fatal(err)
	}
	out, err = h.run(t, "code", "FIJO500")
	if err != nil || !strings.Contains(out, "total    $3500.00") {
		t.Fatalf("code: %q %v", out, err)
	}

	out, err = h.run(t, "confirm", "--pay", "card")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "VEN-000001") || !strings.Contains(out, "sabor: frutilla") || strings.Contains(out, ticket.PendingMarker) {
		t.Fatalf("unexpected ticket:\n%s", out)
	}

	out, _ = h.run(t, "show")
	if !strings.Contains(out, "cart is empty") {
		t.Fatalf("cart should be empty after confirm: %q", out)
	}
}

func TestOfflineConfirmQueuesAndRetry(t *testing.T) {
	h := newHarness()
	h.be.setOffline(true)

	if _, err := h.run(t, "add", "5"); err != nil {
		t.Fatal(err)
	}
	out, err := h.run(t, "confirm")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ticket.PendingMarker) || !strings.Contains(out, "1 pending") {
		t.Fatalf("expected pending ticket:\n%s", out)
	}

	out, _ = h.run(t, "queue", "size")
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("expected 1 queued, got %q", out)
	}

	if _, err := h.run(t, "queue", "retry"); err == nil {
		t.Fatal("retry while offline should report remaining sales")
	}

	h.be.setOffline(false)
	out, err = h.run(t, "queue", "retry")
	if err != nil || !strings.Contains(out, "sent 1, remaining 0") {
		t.Fatalf("retry: %q %v", out, err)
	}
}

func TestQueueDiscard(t *testing.T) {
	h := newHarness()
	h.be.setOffline(true)
	if _, err := h.run(t, "add", "5"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.run(t, "confirm"); err != nil {
		t.Fatal(err)
	}

	out, _ := h.run(t, "queue", "list")
	id, _, _ := strings.Cut(strings.TrimSpace(out), " ")
	if _, err := h.run(t, "queue", "discard", id); err != nil {
		t.Fatalf("discard %q: %v", id, err)
	}
	if _, err := h.run(t, "queue", "discard", id); err == nil {
		t.Fatal("second discard should fail")
	}
}

func TestCommandErrors(t *testing.T) {
	h := newHarness()

	if _, err := h.run(t, "add", "9"); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := h.run(t, "add", "5", "--meta", "=x"); err == nil {
		t.Fatal("expected meta parse error")
	}
	if _, err := h.run(t, "code", "NOPE"); !errors.Is(err, discount.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
	if _, err := h.run(t, "code"); !errors.Is(err, discount.ErrCodeRequired) {
		t.Fatalf("expected ErrCodeRequired, got %v", err)
	}
	if _, err := h.run(t, "confirm"); err == nil {
		t.Fatal("confirming an empty cart should fail")
	}
}

func TestParseMeta(t *testing.T) {
	m, err := parseMeta([]string{"sabores=chocolate,limon", " formato = 1/4 kg"})
	if err != nil {
		t.Fatal(err)
	}
	if m["sabores"] != "chocolate,limon" || m["formato"] != "1/4 kg" {
		t.Fatalf("unexpected meta %v", m)
	}
	if m, _ := parseMeta(nil); m != nil {
		t.Fatal("no pairs should give nil meta")
	}
}
