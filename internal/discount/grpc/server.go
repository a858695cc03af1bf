package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/discount/app"
	"github.com/venezia/venezia-pos/internal/discount/domain"
)

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) ValidateCode(ctx context.Context, req *posv1.ValidateCodeRequest) (*posv1.ValidateCodeResponse, error) {
	c, err := s.svc.Validate(ctx, req.Code, req.StoreID)
	if err != nil {
		return nil, mapErr(err)
	}
	resp := ToWire(c)
	return &resp, nil
}

func ToWire(c domain.Code) posv1.ValidateCodeResponse {
	return posv1.ValidateCodeResponse{
		Code:          c.Code,
		Type:          c.Type,
		Status:        string(c.Status),
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		ExpiresAt:     c.ExpiresAt,
		StoreID:       c.StoreID,
	}
}

// WireCode maps a service error to the envelope code the clients switch on.
func WireCode(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return posv1.CodeInvalid
	case errors.Is(err, app.ErrCodeNotFound):
		return posv1.CodeNotFound
	case errors.Is(err, app.ErrCodeDisabled):
		return posv1.CodeDisabled
	case errors.Is(err, app.ErrCodeExpired):
		return posv1.CodeExpired
	case errors.Is(err, app.ErrCodeExhausted):
		return posv1.CodeCapacityReached
	case errors.Is(err, app.ErrStoreMismatch):
		return posv1.CodeStoreMismatch
	default:
		return posv1.CodeServerError
	}
}

// mapErr puts the wire code in the status message so gRPC clients can tell rejections apart.
func mapErr(err error) error {
	code := WireCode(err)
	switch code {
	case posv1.CodeInvalid:
		return status.Error(codes.InvalidArgument, code)
	case posv1.CodeNotFound:
		return status.Error(codes.NotFound, code)
	case posv1.CodeServerError:
		return status.Error(codes.Internal, code)
	default:
		return status.Error(codes.FailedPrecondition, code)
	}
}
