// Package grpcapi talks to the backend gRPC services with the JSON codec.
package grpcapi

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/internal/pos/remote"
)

type Client struct {
	catalog  posv1.CatalogServiceClient
	discount posv1.DiscountServiceClient
	sales    posv1.SalesServiceClient
}

func New(cc grpc.ClientConnInterface) *Client {
	return &Client{
		catalog:  posv1.NewCatalogServiceClient(cc),
		discount: posv1.NewDiscountServiceClient(cc),
		sales:    posv1.NewSalesServiceClient(cc),
	}
}

// Dial opens a plaintext connection; the register and posd share a LAN.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return cc, nil
}

func (c *Client) ListProducts(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	resp, err := c.catalog.ListProducts(ctx, &posv1.ListProductsRequest{Search: q.Search, Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		return catalog.Page{}, fmt.Errorf("list products: %w", err)
	}

	items := make([]domain.Product, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, remote.ProductFromWire(p))
	}
	return catalog.Page{Items: items, Total: resp.Total, Page: resp.Page, PageSize: resp.PageSize}, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	resp, err := c.catalog.GetProduct(ctx, &posv1.GetProductRequest{ID: id})
	if status.Code(err) == codes.NotFound {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return remote.ProductFromWire(resp.Product), nil
}

func (c *Client) ValidateCode(ctx context.Context, code string, storeID int64) (domain.CodeInfo, error) {
	resp, err := c.discount.ValidateCode(ctx, &posv1.ValidateCodeRequest{Code: code, StoreID: storeID})
	if err != nil {
		if rej := rejection(err); rej != nil {
			return domain.CodeInfo{}, rej
		}
		return domain.CodeInfo{}, fmt.Errorf("validate code: %w", err)
	}
	return remote.CodeInfoFromWire(*resp), nil
}

func (c *Client) SubmitSale(ctx context.Context, payload domain.SalePayload) (domain.SaleResult, error) {
	resp, err := c.sales.SubmitSale(ctx, &payload)
	if err != nil {
		return domain.SaleResult{}, fmt.Errorf("submit sale: %w", err)
	}
	if !resp.Success {
		return domain.SaleResult{}, errors.New("submit sale: not accepted")
	}
	return domain.SaleResult{SaleID: resp.SaleID, ReceiptNumber: resp.ReceiptNumber, Duplicate: resp.Duplicate}, nil
}

// rejection reads the wire code the discount service puts in the status
// message. Transport failures and server errors are not rejections.
func rejection(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return remote.CodeRejection(st.Message())
	default:
		return nil
	}
}
