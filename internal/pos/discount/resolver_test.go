package discount

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

type stubValidator struct {
	calls   int
	code    string
	storeID int64
	info    domain.CodeInfo
	err     error
}

func (s *stubValidator) ValidateCode(ctx context.Context, code string, storeID int64) (domain.CodeInfo, error) {
	s.calls++
	s.code, s.storeID = code, storeID
	return s.info, s.err
}

func TestValidateEmptyCodeSkipsBackend(t *testing.T) {
	backend := &stubValidator{}
	r := NewResolver(backend, 1)

	for _, code := range []string{"", "   "} {
		if _, err := r.Validate(context.Background(), code); !errors.Is(err, ErrCodeRequired) {
			t.Fatalf("expected ErrCodeRequired, got %v", err)
		}
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times", backend.calls)
	}
}

func TestValidateTrimsAndPassesStore(t *testing.T) {
	ten := decimal.NewFromInt(10)
	backend := &stubValidator{info: domain.CodeInfo{DiscountType: domain.DiscountPercent, DiscountValue: &ten}}
	r := NewResolver(backend, 7)

	info, err := r.Validate(context.Background(), "  PROMO10 ")
	if err != nil {
		t.Fatal(err)
	}
	if backend.code != "PROMO10" || backend.storeID != 7 {
		t.Fatalf("backend got %q store %d", backend.code, backend.storeID)
	}
	if info.Code != "PROMO10" || info.DiscountType != domain.DiscountPercent {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestValidateKeepsRejectionsDistinct(t *testing.T) {
	for _, want := range []error{ErrCodeNotFound, ErrCodeDisabled, ErrCodeExpired, ErrCodeExhausted, ErrCodeStoreMismatch} {
		r := NewResolver(&stubValidator{err: want}, 1)
		_, err := r.Validate(context.Background(), "X")
		if !errors.Is(err, want) || !IsRejection(err) {
			t.Fatalf("expected rejection %v, got %v", want, err)
		}
	}
}

func TestValidateWrapsTransportFailures(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	r := NewResolver(&stubValidator{err: netErr}, 1)

	_, err := r.Validate(context.Background(), "X")
	if !errors.Is(err, netErr) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if IsRejection(err) {
		t.Fatal("transport failure reported as rejection")
	}
}
