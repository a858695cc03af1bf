package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/pkg/logger"
)

type memSnapshots struct {
	mu      sync.Mutex
	state   *domain.CartState
	loadErr error
	saveErr error
	saves   int
}

func (m *memSnapshots) Load(ctx context.Context) (domain.CartState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.CartState{}, m.loadErr
	}
	if m.state == nil {
		return domain.CartState{}, nil
	}
	return m.state.Clone(), nil
}

func (m *memSnapshots) Save(ctx context.Context, s domain.CartState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = &s
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id int64, name, price string) domain.Product {
	return domain.Product{ID: id, Name: name, Price: dec(price), Type: domain.TypeHelado}
}

func newStore(t *testing.T, snap *memSnapshots) *Store {
	t.Helper()
	return New(context.Background(), snap, logger.Discard())
}

func TestAddItemMergesEqualMeta(t *testing.T) {
	s := newStore(t, &memSnapshots{})
	p := product(1, "Cuarto", "2500")

	first, err := s.AddItem(p, 1, domain.Meta{"sabores": "limon,menta"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.AddItem(p, 2, domain.Meta{"sabores": "limon,menta"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.Qty != 3 {
		t.Fatalf("expected merge into one line of 3, got %+v / %+v", first, second)
	}

	if _, err := s.AddItem(p, 1, domain.Meta{"sabores": "chocolate"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddItem(p, 1, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddItem(p, 1, domain.Meta{}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(snap.Items))
	}
	if snap.Items[2].Qty != 2 {
		t.Fatalf("nil and empty meta should merge, got qty %d", snap.Items[2].Qty)
	}
	if !snap.Subtotal.Equal(dec("15000")) {
		t.Fatalf("unexpected subtotal %s", snap.Subtotal)
	}
	if snap.SelectedItemID != snap.Items[2].ID {
		t.Fatal("last added line should be selected")
	}
}

func TestAddItemRejectsInvalidProduct(t *testing.T) {
	s := newStore(t, &memSnapshots{})
	bad := []domain.Product{
		{Name: "x", Price: dec("1")},
		{ID: 1, Name: "  ", Price: dec("1")},
		{ID: 1, Name: "x", Price: dec("-1")},
	}
	for _, p := range bad {
		if _, err := s.AddItem(p, 1, nil); !errors.Is(err, ErrInvalidProduct) {
			t.Fatalf("expected ErrInvalidProduct for %+v, got %v", p, err)
		}
	}
	if !s.Snapshot().Empty() {
		t.Fatal("rejected adds must not change the cart")
	}
}

func TestQuantitiesClampToOne(t *testing.T) {
	s := newStore(t, &memSnapshots{})
	it, _ := s.AddItem(product(1, "Kilo", "9000"), 0, nil)
	if it.Qty != 1 {
		t.Fatalf("qty 0 should clamp to 1, got %d", it.Qty)
	}
	s.SetQty(it.ID, -4)
	if got := s.Snapshot().Items[0].Qty; got != 1 {
		t.Fatalf("SetQty should clamp to 1, got %d", got)
	}
	s.SetQty(it.ID, 3)
	if got := s.Snapshot().Total; !got.Equal(dec("27000")) {
		t.Fatalf("unexpected total %s", got)
	}
}

func TestRemoveItemUnknownIsNoop(t *testing.T) {
	s := newStore(t, &memSnapshots{})
	it, _ := s.AddItem(product(1, "Kilo", "9000"), 1, nil)
	s.RemoveItem("missing")
	if len(s.Snapshot().Items) != 1 {
		t.Fatal("unknown id removed a line")
	}
	s.RemoveItem(it.ID)
	snap := s.Snapshot()
	if !snap.Empty() || !snap.Total.IsZero() || snap.SelectedItemID != "" {
		t.Fatalf("expected empty cart, got %+v", snap)
	}
}

func TestDiscountDerivation(t *testing.T) {
	ten := dec("10")
	fiveK := dec("5000")
	override := dec("123")

	cases := []struct {
		name     string
		info     *domain.CodeInfo
		discount string
		total    string
	}{
		{"no code", nil, "0", "3000"},
		{"percent", &domain.CodeInfo{DiscountType: domain.DiscountPercent, DiscountValue: &ten}, "300", "2700"},
		{"amount above subtotal", &domain.CodeInfo{DiscountType: domain.DiscountAmount, DiscountValue: &fiveK}, "5000", "0"},
		{"backend amount wins", &domain.CodeInfo{DiscountType: domain.DiscountPercent, DiscountValue: &ten, DiscountAmount: &override}, "123", "2877"},
		{"terms without value", &domain.CodeInfo{DiscountType: domain.DiscountPercent}, "0", "3000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t, &memSnapshots{})
			_, _ = s.AddItem(product(1, "Cucurucho", "1500"), 2, nil)
			s.ApplyCode("PROMO", tc.info)

			snap := s.Snapshot()
			if !snap.Discount.Equal(dec(tc.discount)) || !snap.Total.Equal(dec(tc.total)) {
				t.Fatalf("discount=%s total=%s, want %s / %s", snap.Discount, snap.Total, tc.discount, tc.total)
			}
		})
	}
}

func TestPercentCodeFollowsCartChanges(t *testing.T) {
	ten := dec("10")
	s := newStore(t, &memSnapshots{})
	s.ApplyCode("PROMO10", &domain.CodeInfo{Code: "PROMO10", DiscountType: domain.DiscountPercent, DiscountValue: &ten})
	if snap := s.Snapshot(); snap.Code != "PROMO10" || !snap.Discount.IsZero() {
		t.Fatalf("code on empty cart should store with zero discount, got %+v", snap)
	}

	it, _ := s.AddItem(product(1, "Cuarto", "2500"), 2, nil)
	if got := s.Snapshot().Discount; !got.Equal(dec("500")) {
		t.Fatalf("expected 500 after add, got %s", got)
	}
	s.SetQty(it.ID, 4)
	if got := s.Snapshot().Discount; !got.Equal(dec("1000")) {
		t.Fatalf("expected 1000 after qty change, got %s", got)
	}

	s.RemoveCode()
	snap := s.Snapshot()
	if snap.Code != "" || snap.CodeInfo != nil || !snap.Discount.IsZero() || !snap.Total.Equal(snap.Subtotal) {
		t.Fatalf("remove code left %+v", snap)
	}
}

func TestResetSaleClearsEverything(t *testing.T) {
	ten := dec("10")
	s := newStore(t, &memSnapshots{})
	_, _ = s.AddItem(product(1, "Cuarto", "2500"), 1, nil)
	s.ApplyCode("X", &domain.CodeInfo{DiscountType: domain.DiscountPercent, DiscountValue: &ten})
	s.ResetSale()

	snap := s.Snapshot()
	if !snap.Empty() || snap.Code != "" || snap.CodeInfo != nil || !snap.Subtotal.IsZero() || !snap.Total.IsZero() {
		t.Fatalf("reset left %+v", snap)
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	snaps := &memSnapshots{}
	s := newStore(t, snaps)
	_, _ = s.AddItem(product(1, "Cuarto", "2500"), 2, domain.Meta{"sabores": "dulce de leche"})
	s.ApplyCode("A", nil)

	restored := newStore(t, snaps).Snapshot()
	if len(restored.Items) != 1 || restored.Items[0].Qty != 2 || restored.Code != "A" {
		t.Fatalf("unexpected restored state %+v", restored)
	}
	if !restored.Total.Equal(dec("5000")) {
		t.Fatalf("totals not recomputed on load: %s", restored.Total)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	s := newStore(t, &memSnapshots{loadErr: errors.New("unexpected end of JSON input")})
	if !s.Snapshot().Empty() {
		t.Fatal("expected empty cart")
	}
}

func TestSaveFailureDoesNotFailMutation(t *testing.T) {
	snaps := &memSnapshots{saveErr: errors.New("disk full")}
	s := newStore(t, snaps)
	if _, err := s.AddItem(product(1, "Cuarto", "2500"), 1, nil); err != nil {
		t.Fatalf("persistence errors must not surface, got %v", err)
	}
	if snaps.saves == 0 {
		t.Fatal("expected a save attempt")
	}
	if len(s.Snapshot().Items) != 1 {
		t.Fatal("in-memory state should still change")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newStore(t, nil)
	_, _ = s.AddItem(product(1, "Cuarto", "2500"), 1, domain.Meta{"sabores": "limon"})

	snap := s.Snapshot()
	snap.Items[0].Qty = 99
	snap.Items[0].Meta["sabores"] = "menta"

	again := s.Snapshot()
	if again.Items[0].Qty != 1 || again.Items[0].Meta["sabores"] != "limon" {
		t.Fatalf("snapshot leaked into store: %+v", again.Items[0])
	}
}

func TestCodeInfoIsolation(t *testing.T) {
	s := newStore(t, nil)
	it, _ := s.AddItem(product(1, "Cuarto", "2500"), 2, nil)

	ten := dec("10")
	info := &domain.CodeInfo{Code: "PROMO10", DiscountType: domain.DiscountPercent, DiscountValue: &ten}
	s.ApplyCode("PROMO10", info)
	ten = dec("90")

	snap := s.Snapshot()
	*snap.CodeInfo.DiscountValue = dec("50")

	s.SetQty(it.ID, 4)
	if got := s.Snapshot().Discount; !got.Equal(dec("1000")) {
		t.Fatalf("discount value leaked into store, expected 1000 got %s", got)
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	s := newStore(t, &memSnapshots{})
	p := product(1, "Cucurucho", "1500")

	const N = 50
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := s.AddItem(p, 1, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].Qty != N {
		t.Fatalf("expected one line of 50, got %+v", snap.Items)
	}
	if !snap.Subtotal.Equal(dec("75000")) {
		t.Fatalf("unexpected subtotal %s", snap.Subtotal)
	}
}
