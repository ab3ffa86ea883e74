package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"store-service/internal/apperr"
	"store-service/internal/auth"
	"store-service/internal/orders"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// caller resolves the order scope of the authenticated user. Admins see every order
// whether or not they are customers themselves.
func (h *Handler) caller(c *gin.Context) (orders.Caller, bool) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsOf(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return orders.Caller{}, false
	}
	if claims.HasRole(auth.RoleAdmin) {
		return orders.Caller{Privileged: true}, true
	}
	customer, err := h.custConf.Resolve(c.Request.Context(), claims.Subject)
	if err != nil {
		writeError(c, err)
		return orders.Caller{}, false
	}
	return orders.Caller{CustomerID: customer.ID}, true
}

func (h *Handler) ListOrders(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	list, err := h.o.List(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders.ProjectAll(caller, list)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := pathID(c, "orderID", "order_id")
	if err != nil {
		writeError(c, err)
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	o, err := h.o.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders.Project(caller, o))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	id, err := pathID(c, "orderID", "order_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req updateStatusRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	next, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	o, err := h.o.UpdateStatus(c.Request.Context(), id, next)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("order status updated", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, strconv.FormatInt(id, 10)), slog.String("Status", next.Label()))
	c.JSON(http.StatusOK, orders.NewAdminView(o))
}

// orderIDFromMetadata reads the order id a payment was created for.
func orderIDFromMetadata(meta map[string]string) (int64, error) {
	raw, ok := meta["order_id"]
	if !ok {
		return 0, apperr.Invalid("order_id", "missing from payment metadata")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("order_id", "must be a positive integer")
	}
	return id, nil
}
