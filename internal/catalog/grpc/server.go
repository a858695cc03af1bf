package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/catalog/app"
	"github.com/venezia/venezia-pos/internal/catalog/domain"
)

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) ListProducts(ctx context.Context, req *posv1.ListProductsRequest) (*posv1.ListProductsResponse, error) {
	page, err := s.svc.ListProducts(ctx, req.Search, req.Page, req.PageSize)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]posv1.Product, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, ToWire(p))
	}

	return &posv1.ListProductsResponse{
		Items:    out,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *Server) GetProduct(ctx context.Context, req *posv1.GetProductRequest) (*posv1.GetProductResponse, error) {
	p, err := s.svc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &posv1.GetProductResponse{Product: ToWire(p)}, nil
}

// ToWire is shared with the REST handler.
func ToWire(p domain.Product) posv1.Product {
	return posv1.Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		CategoryID:   p.CategoryID,
		Category:     p.Category,
		Type:         p.Type(),
		Active:       p.Active,
	}
}

func mapErr(err error) error {
	if errors.Is(err, app.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, app.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
