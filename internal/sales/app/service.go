package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/venezia/venezia-pos/internal/sales/domain"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)

var (
	ErrEmptySale      = errors.New("sale has no items")
	ErrInvalidItem    = errors.New("invalid sale item")
	ErrTotalsMismatch = errors.New("sale totals do not add up")
	ErrInvalidPayment = errors.New("unknown payment method")
	ErrUnknownProduct = errors.New("unknown product")
	ErrSaleNotFound   = errors.New("sale not found")
	ErrDuplicateSale  = errors.New("sale already recorded")
	ErrInvalidRange   = errors.New("invalid date range")
)

type Service struct {
	repo     SaleRepo
	products ProductReader
	codes    CodeRedeemer
	notifier Notifier
	log      *slog.Logger

	maxConcurrent int
}

type Option func(*Service)

func WithCodeRedeemer(c CodeRedeemer) Option { return func(s *Service) { s.codes = c } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func NewService(repo SaleRepo, products ProductReader, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		repo:          repo,
		products:      products,
		log:           log,
		maxConcurrent: 10,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, req domain.CreateSaleRequest) (domain.SaleResponse, error) {
	if req.ClientRef != "" {
		resp, found, err := s.findDuplicate(ctx, req.ClientRef)
		if err != nil || found {
			return resp, err
		}
	}

	sale, err := s.buildSale(req)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	if err := s.checkProducts(ctx, sale.Items); err != nil {
		return domain.SaleResponse{}, err
	}

	created, err := s.repo.CreateSaleTx(ctx, sale)
	if errors.Is(err, ErrDuplicateSale) && req.ClientRef != "" {
		// lost a race with a concurrent submission of the same client_ref
		resp, found, ferr := s.findDuplicate(ctx, req.ClientRef)
		if ferr == nil && found {
			return resp, nil
		}
	}
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.afterCommit(ctx, created)

	return domain.SaleResponse{SaleID: created.ID, ReceiptNumber: created.ReceiptNumber()}, nil
}

func (s *Service) findDuplicate(ctx context.Context, ref string) (domain.SaleResponse, bool, error) {
	prev, err := s.repo.FindByClientRef(ctx, ref)
	if errors.Is(err, ErrSaleNotFound) {
		return domain.SaleResponse{}, false, nil
	}
	if err != nil {
		return domain.SaleResponse{}, false, err
	}
	s.log.InfoContext(ctx, "duplicate sale submission",
		slog.String("client_ref", ref),
		slog.Int64("sale_id", prev.ID),
	)
	return domain.SaleResponse{SaleID: prev.ID, ReceiptNumber: prev.ReceiptNumber(), Duplicate: true}, true, nil
}

func (s *Service) buildSale(req domain.CreateSaleRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, ErrEmptySale
	}

	items := make([]domain.Item, 0, len(req.Items))
	subtotal := decimal.Zero
	for i, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity < 1 || it.UnitPrice.IsNegative() {
			return domain.Sale{}, fmt.Errorf("item %d: %w", i, ErrInvalidItem)
		}
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, domain.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: line,
			Meta:      it.Meta,
		})
		subtotal = subtotal.Add(line)
	}

	if req.Discount.IsNegative() || !req.Subtotal.Equal(subtotal) {
		return domain.Sale{}, ErrTotalsMismatch
	}
	total := decimal.Max(decimal.Zero, subtotal.Sub(req.Discount))
	if !req.Total.Equal(total) {
		return domain.Sale{}, ErrTotalsMismatch
	}

	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if method == "" {
		method = domain.PaymentCash
	}
	if !method.Valid() {
		return domain.Sale{}, ErrInvalidPayment
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	sale := domain.Sale{
		ClientRef:     req.ClientRef,
		UserID:        req.UserID,
		Items:         items,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Total:         total,
		PaymentMethod: method,
		Code:          strings.TrimSpace(req.Code),
		CreatedAt:     createdAt.UTC(),
	}
	if req.StoreID > 0 {
		store := req.StoreID
		sale.StoreID = &store
	}
	return sale, nil
}

func (s *Service) checkProducts(ctx context.Context, items []domain.Item) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if _, err := s.products.GetProduct(ctx, it.ProductID); err != nil {
				return fmt.Errorf("product %d: %w", it.ProductID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) afterCommit(ctx context.Context, sale domain.Sale) {
	log := s.log.With(slog.Int64("sale_id", sale.ID), slog.String("receipt", sale.ReceiptNumber()))

	if sale.Code != "" && s.codes != nil {
		var store int64
		if sale.StoreID != nil {
			store = *sale.StoreID
		}
		if err := s.codes.Redeem(ctx, sale.Code, sale.ID, store); err != nil {
			log.WarnContext(ctx, "code redemption failed", slog.String("code", sale.Code), slog.Any("err", err))
		}
	}

	if s.notifier != nil {
		s.notifier.SaleCreated(sale)
	}

	log.InfoContext(ctx, "sale created",
		slog.String("total", sale.Total.StringFixed(2)),
		slog.String("payment_method", string(sale.PaymentMethod)),
		slog.Int("items", len(sale.Items)),
	)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

// Range returns sales created in [from, to).
func (s *Service) Range(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return nil, ErrInvalidRange
	}
	return s.repo.Range(ctx, from, to)
}
