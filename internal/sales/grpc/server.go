package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/sales/app"
	"github.com/venezia/venezia-pos/internal/sales/domain"
)

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) SubmitSale(ctx context.Context, req *posv1.SubmitSaleRequest) (*posv1.SubmitSaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, posv1.CodeInvalid)
	}

	resp, err := s.svc.CreateSale(ctx, FromWire(req))
	if err != nil {
		return nil, mapErr(err)
	}
	return &posv1.SubmitSaleResponse{
		Success:       true,
		SaleID:        resp.SaleID,
		ReceiptNumber: resp.ReceiptNumber,
		Duplicate:     resp.Duplicate,
	}, nil
}

func FromWire(req *posv1.SubmitSaleRequest) domain.CreateSaleRequest {
	items := make([]domain.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.ItemRequest{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Meta:      it.Meta,
		})
	}

	return domain.CreateSaleRequest{
		ClientRef:     req.ClientRef,
		StoreID:       req.StoreID,
		Items:         items,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Code:          req.Code,
		CreatedAt:     req.CreatedAt,
	}
}

// WireCode maps a service error to its envelope code.
func WireCode(err error) string {
	switch {
	case errors.Is(err, app.ErrUnknownProduct):
		return posv1.CodeNotFound
	case errors.Is(err, app.ErrEmptySale),
		errors.Is(err, app.ErrInvalidItem),
		errors.Is(err, app.ErrTotalsMismatch),
		errors.Is(err, app.ErrInvalidPayment),
		errors.Is(err, app.ErrInvalidRange):
		return posv1.CodeInvalid
	default:
		return posv1.CodeServerError
	}
}

func mapErr(err error) error {
	switch WireCode(err) {
	case posv1.CodeInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case posv1.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "failed to create sale")
	}
}
