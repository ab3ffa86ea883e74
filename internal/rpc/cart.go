// Package rpc exposes cart reads to other services over gRPC. Messages are plain
// structs carried by a JSON codec, so no generated code is involved.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	CartItemServiceName  = "store.v1.CartItemService"
	GetCartDetailsMethod = "/" + CartItemServiceName + "/GetCartDetails"
)

type GetCartDetailsRequest struct {
	CartID string `json:"cart_id"`
}

type CartItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	ItemTotal string `json:"item_total"`
}

type GetCartDetailsResponse struct {
	CartID     string     `json:"cart_id"`
	CartItems  []CartItem `json:"cart_items"`
	TotalPrice string     `json:"total_price"`
}

type CartItemServiceServer interface {
	GetCartDetails(ctx context.Context, req *GetCartDetailsRequest) (*GetCartDetailsResponse, error)
}

var CartItemServiceDesc = grpc.ServiceDesc{
	ServiceName: CartItemServiceName,
	HandlerType: (*CartItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCartDetails", Handler: getCartDetailsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "store/v1/cart",
}

func RegisterCartItemServiceServer(s grpc.ServiceRegistrar, srv CartItemServiceServer) {
	s.RegisterService(&CartItemServiceDesc, srv)
}

func getCartDetailsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCartDetailsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartItemServiceServer).GetCartDetails(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetCartDetailsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CartItemServiceServer).GetCartDetails(ctx, req.(*GetCartDetailsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type CartItemServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartItemServiceClient(cc grpc.ClientConnInterface) *CartItemServiceClient {
	return &CartItemServiceClient{cc: cc}
}

func (c *CartItemServiceClient) GetCartDetails(ctx context.Context, in *GetCartDetailsRequest, opts ...grpc.CallOption) (*GetCartDetailsResponse, error) {
	out := new(GetCartDetailsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, GetCartDetailsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
