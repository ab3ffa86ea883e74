package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"store-service/internal/orders"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

// Checkout turns the cart into an Unpaid order owned by the calling customer.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOf(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	customer, err := h.custConf.Resolve(ctx, claims.Subject)
	if err != nil {
		writeError(c, err)
		return
	}

	order, err := h.w.Checkout(ctx, c.Param("cartID"), customer.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orders.NewCustomerView(order))
}
