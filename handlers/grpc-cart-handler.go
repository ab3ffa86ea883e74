package handlers

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"store-service/internal/apperr"
	"store-service/internal/cart"
	"store-service/internal/rpc"
)

type cartItemService struct {
	cartConf cart.Conf
}

var _ rpc.CartItemServiceServer = (*cartItemService)(nil)

func NewCartItemServiceHandler(cartConf cart.Conf) rpc.CartItemServiceServer {
	return &cartItemService{cartConf: cartConf}
}

func (s *cartItemService) GetCartDetails(ctx context.Context, req *rpc.GetCartDetailsRequest) (*rpc.GetCartDetailsResponse, error) {
	found, err := s.cartConf.Get(ctx, req.CartID)
	if err != nil {
		return nil, grpcError(err)
	}

	view := cart.NewCartResponse(found)
	items := make([]rpc.CartItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, rpc.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ItemTotal: item.ItemTotal,
		})
	}
	return &rpc.GetCartDetailsResponse{
		CartID:     view.ID,
		CartItems:  items,
		TotalPrice: view.TotalPrice,
	}, nil
}

func grpcError(err error) error {
	switch {
	case apperr.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case apperr.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case apperr.IsTransaction(err):
		return status.Error(codes.Unavailable, "temporary failure, please retry")
	}
	return status.Error(codes.Internal, "failed to get cart details")
}
