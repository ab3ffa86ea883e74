package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"store-service/internal/auth"
	"store-service/internal/cart"
	"store-service/internal/rpc"
)

func TestGetCartDetails(t *testing.T) {
	api := newTestAPI(t, "")
	product := api.createProduct(api.token("admin-1", auth.RoleAdmin), "3.10")
	cartID := api.createCart()
	rec := api.do(http.MethodPost, "/carts/"+cartID+"/items", gin.H{"product_id": product, "quantity": 3}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	cConf, err := cart.NewConf(api.store)
	require.NoError(t, err)
	srv := NewCartItemServiceHandler(cConf)

	resp, err := srv.GetCartDetails(context.Background(), &rpc.GetCartDetailsRequest{CartID: cartID})
	require.NoError(t, err)
	assert.Equal(t, cartID, resp.CartID)
	assert.Equal(t, "9.30", resp.TotalPrice)
	require.Len(t, resp.CartItems, 1)
	assert.Equal(t, "9.30", resp.CartItems[0].ItemTotal)

	_, err = srv.GetCartDetails(context.Background(), &rpc.GetCartDetailsRequest{CartID: "bogus"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.GetCartDetails(context.Background(), &rpc.GetCartDetailsRequest{CartID: "6f1c1a52-4a3e-4d52-9a2b-3b1c1d0e9f00"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
