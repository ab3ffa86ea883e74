package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"store-service/internal/cart"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

func (h *Handler) CreateCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	created, err := h.cConf.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("cart created", slog.String(logkey.TraceID, traceId), slog.String(logkey.CartID, created.ID.String()))
	c.JSON(http.StatusCreated, cart.NewCartResponse(created))
}

func (h *Handler) GetCart(c *gin.Context) {
	found, err := h.cConf.Get(c.Request.Context(), c.Param("cartID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart.NewCartResponse(found))
}

func (h *Handler) DeleteCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	cartID := c.Param("cartID")
	if err := h.cConf.Delete(c.Request.Context(), cartID); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("cart deleted", slog.String(logkey.TraceID, traceId), slog.String(logkey.CartID, cartID))
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	var req addItemRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	cartID := c.Param("cartID")
	item, err := h.cConf.AddItem(c.Request.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId), slog.String(logkey.CartID, cartID),
		slog.String(logkey.ProductID, strconv.FormatInt(req.ProductID, 10)), slog.Int("Quantity", req.Quantity))
	c.JSON(http.StatusCreated, cart.NewItemResponse(item))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, err := pathID(c, "productID", "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req updateItemRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	item, err := h.cConf.UpdateItem(c.Request.Context(), c.Param("cartID"), productID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart.NewItemResponse(item))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, err := pathID(c, "productID", "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.cConf.RemoveItem(c.Request.Context(), c.Param("cartID"), productID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
