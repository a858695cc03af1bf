// Package discount validates codes typed at the register against the backend.
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/venezia/venezia-pos/internal/pos/domain"
)

// Rejections reported by the backend. Anything else returned by Validate is
// a transport or server failure.
var (
	ErrCodeRequired      = errors.New("discount code is required")
	ErrCodeNotFound      = errors.New("discount code not found")
	ErrCodeDisabled      = errors.New("discount code disabled")
	ErrCodeExpired       = errors.New("discount code expired")
	ErrCodeExhausted     = errors.New("discount code usage limit reached")
	ErrCodeStoreMismatch = errors.New("discount code not valid for this store")
)

type Validator interface {
	ValidateCode(ctx context.Context, code string, storeID int64) (domain.CodeInfo, error)
}

type Resolver struct {
	backend Validator
	storeID int64
}

func NewResolver(backend Validator, storeID int64) *Resolver {
	return &Resolver{backend: backend, storeID: storeID}
}

func (r *Resolver) Validate(ctx context.Context, code string) (domain.CodeInfo, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.CodeInfo{}, ErrCodeRequired
	}

	info, err := r.backend.ValidateCode(ctx, code, r.storeID)
	if err != nil {
		if IsRejection(err) {
			return domain.CodeInfo{}, err
		}
		return domain.CodeInfo{}, fmt.Errorf("validate code: %w", err)
	}
	if info.Code == "" {
		info.Code = code
	}
	return info, nil
}

// IsRejection reports whether err is a definitive answer about the code
// rather than a failure to get one.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCodeRequired) ||
		errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrCodeDisabled) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrCodeExhausted) ||
		errors.Is(err, ErrCodeStoreMismatch)
}
