package posv1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/venezia/venezia-pos/pkg/jsoncodec"
)

// The descriptors below follow the shape protoc-gen-go-grpc emits, but the
// messages are the plain structs of this package and travel with the JSON codec.

const (
	CatalogServiceName  = "venezia.pos.v1.CatalogService"
	DiscountServiceName = "venezia.pos.v1.DiscountService"
	SalesServiceName    = "venezia.pos.v1.SalesService"

	CatalogService_ListProducts_FullMethodName  = "/" + CatalogServiceName + "/ListProducts"
	CatalogService_GetProduct_FullMethodName    = "/" + CatalogServiceName + "/GetProduct"
	DiscountService_ValidateCode_FullMethodName = "/" + DiscountServiceName + "/ValidateCode"
	SalesService_SubmitSale_FullMethodName      = "/" + SalesServiceName + "/SubmitSale"
)

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(jsoncodec.Name)}, opts...)
}

// ---- CatalogService ----

type CatalogServiceServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*GetProductResponse, error)
}

type CatalogServiceClient interface {
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductResponse, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc: cc}
}

func (c *catalogServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.cc.Invoke(ctx, CatalogService_ListProducts_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *catalogServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductResponse, error) {
	out := new(GetProductResponse)
	if err := c.cc.Invoke(ctx, CatalogService_GetProduct_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

func _CatalogService_ListProducts_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListProductsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).ListProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CatalogService_ListProducts_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).ListProducts(ctx, req.(*ListProductsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CatalogService_GetProduct_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CatalogService_GetProduct_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetProduct(ctx, req.(*GetProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListProducts", Handler: _CatalogService_ListProducts_Handler},
		{MethodName: "GetProduct", Handler: _CatalogService_GetProduct_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "venezia/pos/v1/catalog",
}

// ---- DiscountService ----

type DiscountServiceServer interface {
	ValidateCode(context.Context, *ValidateCodeRequest) (*ValidateCodeResponse, error)
}

type DiscountServiceClient interface {
	ValidateCode(ctx context.Context, in *ValidateCodeRequest, opts ...grpc.CallOption) (*ValidateCodeResponse, error)
}

type discountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDiscountServiceClient(cc grpc.ClientConnInterface) DiscountServiceClient {
	return &discountServiceClient{cc: cc}
}

func (c *discountServiceClient) ValidateCode(ctx context.Context, in *ValidateCodeRequest, opts ...grpc.CallOption) (*ValidateCodeResponse, error) {
	out := new(ValidateCodeResponse)
	if err := c.cc.Invoke(ctx, DiscountService_ValidateCode_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterDiscountServiceServer(s grpc.ServiceRegistrar, srv DiscountServiceServer) {
	s.RegisterService(&DiscountService_ServiceDesc, srv)
}

func _DiscountService_ValidateCode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiscountServiceServer).ValidateCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DiscountService_ValidateCode_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiscountServiceServer).ValidateCode(ctx, req.(*ValidateCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var DiscountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DiscountServiceName,
	HandlerType: (*DiscountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateCode", Handler: _DiscountService_ValidateCode_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "venezia/pos/v1/discount",
}

// ---- SalesService ----

type SalesServiceServer interface {
	SubmitSale(context.Context, *SubmitSaleRequest) (*SubmitSaleResponse, error)
}

type SalesServiceClient interface {
	SubmitSale(ctx context.Context, in *SubmitSaleRequest, opts ...grpc.CallOption) (*SubmitSaleResponse, error)
}

type salesServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSalesServiceClient(cc grpc.ClientConnInterface) SalesServiceClient {
	return &salesServiceClient{cc: cc}
}

func (c *salesServiceClient) SubmitSale(ctx context.Context, in *SubmitSaleRequest, opts ...grpc.CallOption) (*SubmitSaleResponse, error) {
	out := new(SubmitSaleResponse)
	if err := c.cc.Invoke(ctx, SalesService_SubmitSale_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterSalesServiceServer(s grpc.ServiceRegistrar, srv SalesServiceServer) {
	s.RegisterService(&SalesService_ServiceDesc, srv)
}

func _SalesService_SubmitSale_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SubmitSaleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SalesServiceServer).SubmitSale(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SalesService_SubmitSale_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SalesServiceServer).SubmitSale(ctx, req.(*SubmitSaleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var SalesService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: SalesServiceName,
	HandlerType: (*SalesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitSale", Handler: _SalesService_SubmitSale_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "venezia/pos/v1/sales",
}
