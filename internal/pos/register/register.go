// Package register drives one cashier session: search, add, apply a code,
// confirm, and fall back to the offline queue when the backend is away.
package register

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/pos/cart"
	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/discount"
	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/internal/pos/queue"
	"github.com/venezia/venezia-pos/internal/pos/ticket"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("a sale is already being submitted")
	ErrInvalidPayment     = errors.New("unknown payment method")
)

const (
	DefaultSubmitTimeout = 10 * time.Second
	DefaultPaymentMethod = "cash"
)

var paymentMethods = map[string]bool{
	"cash":        true,
	"card":        true,
	"transfer":    true,
	"mercadopago": true,
}

type Deps struct {
	Cart      *cart.Store
	Catalog   *catalog.Client
	Codes     *discount.Resolver
	Queue     *queue.Queue
	Submitter queue.Submitter

	StoreID       int64
	SubmitTimeout time.Duration
	Log           *slog.Logger
}

// Outcome of a confirmed sale. Queued outcomes carry the queue entry and a
// ticket marked pending; Result is nil for them.
type Outcome struct {
	Ticket ticket.Ticket
	Result *domain.SaleResult
	Queued bool
	Entry  *domain.QueuedSale
}

type Register struct {
	cart      *cart.Store
	catalog   *catalog.Client
	codes     *discount.Resolver
	queue     *queue.Queue
	submitter queue.Submitter

	storeID  int64
	timeout  time.Duration
	log      *slog.Logger
	now      func() time.Time
	newRef   func() string
	inFlight atomic.Bool
}

func New(d Deps) *Register {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.SubmitTimeout <= 0 {
		d.SubmitTimeout = DefaultSubmitTimeout
	}
	return &Register{
		cart:      d.Cart,
		catalog:   d.Catalog,
		codes:     d.Codes,
		queue:     d.Queue,
		submitter: d.Submitter,
		storeID:   d.StoreID,
		timeout:   d.SubmitTimeout,
		log:       d.Log,
		now:       time.Now,
		newRef:    uuid.NewString,
	}
}

func (r *Register) Search(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	return r.catalog.Search(ctx, q)
}

// Add looks the product up so the line carries the current name and price.
func (r *Register) Add(ctx context.Context, productID int64, qty int, meta domain.Meta) (domain.CartItem, error) {
	p, err := r.catalog.Get(ctx, productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	return r.cart.AddItem(p, qty, meta)
}

// ApplyCode leaves the cart untouched unless the backend accepts the code.
func (r *Register) ApplyCode(ctx context.Context, code string) (domain.CodeInfo, error) {
	info, err := r.codes.Validate(ctx, code)
	if err != nil {
		return domain.CodeInfo{}, err
	}
	r.cart.ApplyCode(info.Code, &info)
	return info, nil
}

func (r *Register) Confirm(ctx context.Context, paymentMethod string) (Outcome, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInFlight
	}
	defer r.inFlight.Store(false)

	method := strings.ToLower(strings.TrimSpace(paymentMethod))
	if method == "" {
		method = DefaultPaymentMethod
	}
	if !paymentMethods[method] {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidPayment, paymentMethod)
	}

	snap := r.cart.Snapshot()
	if snap.Empty() {
		return Outcome{}, ErrEmptyCart
	}

	now := r.now()
	payload := BuildPayload(snap, r.newRef(), r.storeID, method, now)

	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	res, err := r.submitter.SubmitSale(sctx, payload)
	cancel()

	if err == nil {
		r.cart.ResetSale()
		r.log.InfoContext(ctx, "sale confirmed",
			slog.Int64("sale_id", res.SaleID),
			slog.String("client_ref", payload.ClientRef),
			slog.Bool("duplicate", res.Duplicate),
		)
		return Outcome{Ticket: ticket.New(snap, &res, method, now), Result: &res}, nil
	}

	// The sale is final from the cashier's side; keep it for a later flush
	// even if the caller's context is already gone.
	entry := r.queue.Enqueue(context.WithoutCancel(ctx), payload)
	r.cart.ResetSale()
	r.log.WarnContext(ctx, "sale submission failed, queued",
		slog.String("entry_id", entry.ID),
		slog.String("client_ref", payload.ClientRef),
		slog.Any("err", err),
	)
	return Outcome{Ticket: ticket.New(snap, nil, method, now), Queued: true, Entry: &entry}, nil
}

func (r *Register) Cancel() {
	r.cart.ResetSale()
}

func (r *Register) Flush(ctx context.Context) (queue.RetryResult, error) {
	return r.queue.RetryAll(ctx)
}

// BuildPayload turns a cart snapshot into the sale request body.
func BuildPayload(snap domain.CartState, clientRef string, storeID int64, method string, at time.Time) domain.SalePayload {
	items := make([]posv1.SaleItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, posv1.SaleItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Qty,
			Price:     it.Price,
			Meta:      map[string]string(it.Meta.Clone()),
		})
	}

	return domain.SalePayload{
		ClientRef:     clientRef,
		StoreID:       storeID,
		Items:         items,
		Subtotal:      snap.Subtotal,
		Discount:      snap.Discount,
		Total:         snap.Total,
		PaymentMethod: method,
		Code:          snap.Code,
		CreatedAt:     at.UTC(),
	}
}
