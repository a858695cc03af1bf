package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/discount/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrCodeNotFound  = errors.New("code not found")
	ErrCodeDisabled  = errors.New("code disabled")
	ErrCodeExpired   = errors.New("code expired")
	ErrCodeExhausted = errors.New("code usage limit reached")
	ErrStoreMismatch = errors.New("code not valid for this store")
)

var hundred = decimal.NewFromInt(100)

type CreateInput struct {
	Code          string
	Type          string
	Status        domain.Status
	StoreID       *int64
	Capacity      *int
	MaxUses       int
	ExpiresAt     *time.Time
	DiscountType  domain.DiscountType
	DiscountValue *decimal.Decimal
}

type Page struct {
	Items    []domain.Code
	Total    int64
	Page     int
	PageSize int
}

type Service struct {
	repo CodeRepo
	now  func() time.Time
}

func NewService(repo CodeRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Code, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		var err error
		if code, err = generateCode(); err != nil {
			return domain.Code{}, err
		}
	}

	maxUses := in.MaxUses
	if maxUses == 0 {
		maxUses = 1
	}
	if maxUses < 1 {
		return domain.Code{}, ErrInvalidInput
	}

	switch in.DiscountType {
	case "":
		in.DiscountValue = nil
	case domain.DiscountPercent, domain.DiscountAmount:
		if in.DiscountValue == nil || in.DiscountValue.IsNegative() {
			return domain.Code{}, ErrInvalidInput
		}
		if in.DiscountType == domain.DiscountPercent && in.DiscountValue.GreaterThan(hundred) {
			return domain.Code{}, ErrInvalidInput
		}
	default:
		return domain.Code{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	if status != domain.StatusActive && status != domain.StatusDisabled {
		return domain.Code{}, ErrInvalidInput
	}

	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = "event"
	}

	return s.repo.Create(ctx, domain.Code{
		Code:          code,
		Type:          typ,
		Status:        status,
		StoreID:       in.StoreID,
		Capacity:      in.Capacity,
		MaxUses:       maxUses,
		ExpiresAt:     in.ExpiresAt,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
	})
}

func (s *Service) List(ctx context.Context, f ListFilter, page, pageSize int) (Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Status = strings.TrimSpace(f.Status)
	f.Limit = pageSize
	f.Offset = (page - 1) * pageSize

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []domain.Code{}
	}
	return Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status domain.Status) (domain.Code, error) {
	if id <= 0 || (status != domain.StatusActive && status != domain.StatusDisabled) {
		return domain.Code{}, ErrInvalidInput
	}
	return s.repo.SetStatus(ctx, id, status)
}

// Validate checks a code for use at storeID (0 means unknown store).
func (s *Service) Validate(ctx context.Context, code string, storeID int64) (domain.Code, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Code{}, ErrInvalidInput
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return domain.Code{}, err
	}
	if err := s.check(c, storeID); err != nil {
		return domain.Code{}, err
	}
	return c, nil
}

// Redeem records one use of code by saleID, re-checking it under a row lock.
func (s *Service) Redeem(ctx context.Context, code string, saleID, storeID int64) error {
	code = strings.TrimSpace(code)
	if code == "" || saleID <= 0 {
		return ErrInvalidInput
	}

	var store *int64
	if storeID > 0 {
		store = &storeID
	}
	return s.repo.Redeem(ctx, code, saleID, store, func(c domain.Code) error {
		return s.check(c, storeID)
	})
}

// check applies the rejections in a fixed order: disabled, expired, exhausted, store.
func (s *Service) check(c domain.Code, storeID int64) error {
	if c.Status != domain.StatusActive {
		return ErrCodeDisabled
	}
	if c.IsExpired(s.now()) {
		return ErrCodeExpired
	}
	if c.Exhausted() {
		return ErrCodeExhausted
	}
	if c.StoreID != nil && storeID > 0 && *c.StoreID != storeID {
		return ErrStoreMismatch
	}
	return nil
}

func generateCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
