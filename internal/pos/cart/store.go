// Package cart keeps the in-progress sale: lines, the applied discount code
// and the derived totals.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

var ErrInvalidProduct = errors.New("product needs an id, a name and a non-negative price")

const saveTimeout = 2 * time.Second

type SnapshotStore interface {
	Load(ctx context.Context) (domain.CartState, error)
	Save(ctx context.Context, state domain.CartState) error
}

// Store serializes every mutation behind one mutex and persists the
// resulting snapshot. Persistence failures are logged, never returned.
type Store struct {
	mu    sync.Mutex
	state domain.CartState
	snap  SnapshotStore
	log   *slog.Logger
	newID func() string
}

// New restores the last persisted cart. An unreadable snapshot starts an empty cart.
func New(ctx context.Context, snap SnapshotStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		snap:  snap,
		log:   log,
		newID: uuid.NewString,
	}

	if snap != nil {
		state, err := snap.Load(ctx)
		if err != nil {
			log.WarnContext(ctx, "cart snapshot unreadable, starting empty", slog.Any("err", err))
			state = domain.CartState{}
		}
		s.state = state.Clone()
	}
	s.recompute()
	return s
}

func (s *Store) AddItem(p domain.Product, qty int, meta domain.Meta) (domain.CartItem, error) {
	if p.ID <= 0 || strings.TrimSpace(p.Name) == "" || p.Price.IsNegative() {
		return domain.CartItem{}, ErrInvalidProduct
	}
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added domain.CartItem
	merged := false
	for i := range s.state.Items {
		it := &s.state.Items[i]
		if it.ProductID == p.ID && it.Meta.Equal(meta) {
			it.Qty += qty
			added = *it
			merged = true
			break
		}
	}
	if !merged {
		typ := p.Type
		if typ == "" {
			typ = domain.TypeOtro
		}
		added = domain.CartItem{
			ID:        s.newID(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Qty:       qty,
			Type:      typ,
			Meta:      meta.Clone(),
		}
		s.state.Items = append(s.state.Items, added)
	}
	s.state.SelectedItemID = added.ID

	s.commit()
	added.Meta = added.Meta.Clone()
	return added, nil
}

// RemoveItem is a no-op for unknown ids.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.state.Items[:0]
	for _, it := range s.state.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	s.state.Items = items
	if s.state.SelectedItemID == id {
		s.state.SelectedItemID = ""
	}
	s.commit()
}

// SetQty clamps qty to at least 1.
func (s *Store) SetQty(id string, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			s.state.Items[i].Qty = qty
			break
		}
	}
	s.commit()
}

func (s *Store) ApplyCode(code string, info *domain.CodeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Code = strings.TrimSpace(code)
	s.state.CodeInfo = info.Clone()
	s.commit()
}

func (s *Store) RemoveCode() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Code = ""
	s.state.CodeInfo = nil
	s.commit()
}

func (s *Store) ResetSale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.CartState{}
	s.commit()
}

func (s *Store) SetSelected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SelectedItemID = id
	s.commit()
}

func (s *Store) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// commit must be called with mu held.
func (s *Store) commit() {
	s.recompute()
	if s.snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.snap.Save(ctx, s.state.Clone()); err != nil {
		s.log.Warn("cart snapshot not persisted", slog.Any("err", err))
	}
}

func (s *Store) recompute() {
	s.state.Subtotal, s.state.Discount, s.state.Total = Totals(s.state.Items, s.state.CodeInfo)
}

var hundred = decimal.NewFromInt(100)

// Totals derives subtotal, discount and total. A discount larger than the
// subtotal is kept as is; only the total is floored at zero.
func Totals(items []domain.CartItem, info *domain.CodeInfo) (subtotal, discount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	discount = decimal.Zero
	if info != nil {
		switch {
		case info.DiscountAmount != nil:
			discount = *info.DiscountAmount
		case info.DiscountValue == nil:
		case info.DiscountType == domain.DiscountPercent:
			discount = subtotal.Mul(*info.DiscountValue).Div(hundred).Round(2)
		case info.DiscountType == domain.DiscountAmount:
			discount = *info.DiscountValue
		}
	}

	total = decimal.Max(decimal.Zero, subtotal.Sub(discount))
	return subtotal, discount, total
}
