package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"store-service/internal/apperr"
	"store-service/internal/auth"
	"store-service/internal/cart"
	"store-service/internal/catalog"
	"store-service/internal/checkout"
	"store-service/internal/customers"
	"store-service/internal/metrics"
	"store-service/internal/orders"
	"store-service/middleware"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

type Handler struct {
	cConf         cart.Conf
	pConf         catalog.Conf
	custConf      customers.Conf
	o             *orders.Conf
	w             *checkout.Workflow
	webhookSecret string
	validate      *validator.Validate
}

func NewHandler(cConf cart.Conf, pConf catalog.Conf, custConf customers.Conf, o *orders.Conf,
	w *checkout.Workflow, webhookSecret string) *Handler {
	return &Handler{
		cConf:         cConf,
		pConf:         pConf,
		custConf:      custConf,
		o:             o,
		w:             w,
		webhookSecret: webhookSecret,
		validate:      newValidator(),
	}
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// API wires every route under endpointPrefix. sm may be nil, in which case neither the
// metrics middleware nor /metrics is installed.
func API(endpointPrefix string, k *auth.Keys, sm *metrics.ServerMetrics, h *Handler) (*gin.Engine, error) {
	switch mode := os.Getenv("GIN_MODE"); mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	}
	r := gin.New()

	m, err := middleware.NewMid(k)
	if err != nil {
		return nil, err
	}

	r.Use(middleware.Logger(), gin.Recovery())
	if sm != nil {
		r.Use(middleware.Metrics(sm))
		r.GET("/metrics", gin.WrapH(sm.Handler()))
	}
	r.GET("/ping", HealthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/carts", h.CreateCart)
		v1.GET("/carts/:cartID", h.GetCart)
		v1.DELETE("/carts/:cartID", h.DeleteCart)
		v1.POST("/carts/:cartID/items", h.AddCartItem)
		v1.PATCH("/carts/:cartID/items/:productID", h.UpdateCartItem)
		v1.DELETE("/carts/:cartID/items/:productID", h.RemoveCartItem)

		v1.GET("/products/:productID", h.GetProduct)

		if h.webhookSecret != "" {
			v1.POST("/webhook/stripe", h.Webhook)
		}
	}

	secured := r.Group(endpointPrefix)
	{
		secured.Use(m.Authentication())
		secured.POST("/carts/:cartID/checkout", m.Authorize(h.Checkout, auth.RoleUser, auth.RoleAdmin))

		secured.GET("/orders", m.Authorize(h.ListOrders, auth.RoleUser, auth.RoleAdmin))
		secured.GET("/orders/:orderID", m.Authorize(h.GetOrder, auth.RoleUser, auth.RoleAdmin))
		secured.PATCH("/orders/:orderID", m.Authorize(h.UpdateOrderStatus, auth.RoleAdmin))

		secured.POST("/products", m.Authorize(h.CreateProduct, auth.RoleAdmin))
		secured.PATCH("/products/:productID", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
		secured.DELETE("/products/:productID", m.Authorize(h.DeleteProduct, auth.RoleAdmin))

		secured.POST("/customers/me", m.Authorize(h.RegisterCustomer, auth.RoleUser, auth.RoleAdmin))
		secured.GET("/customers/me", m.Authorize(h.GetCustomer, auth.RoleUser, auth.RoleAdmin))
		secured.PUT("/customers/me/address", m.Authorize(h.SetAddress, auth.RoleUser, auth.RoleAdmin))
		secured.GET("/customers/me/address", m.Authorize(h.GetAddress, auth.RoleUser, auth.RoleAdmin))
	}
	return r, nil
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// writeError maps the error taxonomy onto HTTP status codes. Client errors carry the
// violated precondition; server errors stay opaque.
func writeError(c *gin.Context, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	var (
		notFound    *apperr.NotFoundError
		validation  *apperr.ValidationError
		conflict    *apperr.ConflictError
		transaction *apperr.TransactionError
	)
	switch {
	case errors.As(err, &notFound):
		slog.Info("not found", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &validation):
		slog.Info("invalid request", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &conflict):
		slog.Info("conflict", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &transaction):
		slog.Error("transaction failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure, please retry"})
	default:
		slog.Error("request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bind decodes the JSON body into req and runs its validate tags.
func (h *Handler) bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperr.Invalid("", "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.Invalid(verrs[0].Field(), describe(verrs[0]))
		}
		return apperr.Invalid("", err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

func pathID(c *gin.Context, name, field string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(field, "must be a positive integer")
	}
	return id, nil
}

func claimsOf(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}
