package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"store-service/internal/apperr"
	"store-service/internal/catalog"
	"store-service/internal/money"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

type productResponse struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	UnitPrice         string    `json:"unit_price"`
	UnitPriceAfterTax string    `json:"unit_price_after_tax"`
	Inventory         int       `json:"inventory"`
	CreatedAt         time.Time `json:"created_at"`
}

func newProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		UnitPrice:         money.Format(p.UnitPrice),
		UnitPriceAfterTax: money.Format(p.UnitPriceAfterTax()),
		Inventory:         p.Inventory,
		CreatedAt:         p.CreatedAt,
	}
}

// Prices travel as strings so no float rounding happens on the way in.
type createProductRequest struct {
	Title       string `json:"title" validate:"required,min=5"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price" validate:"required"`
	Inventory   int    `json:"inventory" validate:"gte=0"`
}

type updateProductRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=5"`
	Description *string `json:"description"`
	UnitPrice   *string `json:"unit_price"`
	Inventory   *int    `json:"inventory" validate:"omitnil,gte=0"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := money.Parse(raw)
	if err != nil {
		return decimal.Decimal{}, apperr.Invalid("unit_price", err.Error())
	}
	return price, nil
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "productID", "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.pConf.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(p))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	var req createProductRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.pConf.CreateProduct(c.Request.Context(), catalog.NewProduct{
		Title:       req.Title,
		Description: req.Description,
		UnitPrice:   price,
		Inventory:   req.Inventory,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("product created", slog.String(logkey.TraceID, traceId), slog.String(logkey.ProductID, strconv.FormatInt(p.ID, 10)))
	c.JSON(http.StatusCreated, newProductResponse(p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	id, err := pathID(c, "productID", "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req updateProductRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	u := catalog.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Inventory:   req.Inventory,
	}
	if req.UnitPrice != nil {
		price, err := parsePrice(*req.UnitPrice)
		if err != nil {
			writeError(c, err)
			return
		}
		u.UnitPrice = &price
	}

	p, err := h.pConf.UpdateProduct(c.Request.Context(), id, u)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("product updated", slog.String(logkey.TraceID, traceId), slog.String(logkey.ProductID, strconv.FormatInt(id, 10)))
	c.JSON(http.StatusOK, newProductResponse(p))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	id, err := pathID(c, "productID", "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.pConf.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("product deleted", slog.String(logkey.TraceID, traceId), slog.String(logkey.ProductID, strconv.FormatInt(id, 10)))
	c.Status(http.StatusNoContent)
}
