package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"store-service/internal/customers"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

const birthDateLayout = "2006-01-02"

type registerCustomerRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	BirthDate   string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

type addressRequest struct {
	Province string `json:"province" validate:"required"`
	City     string `json:"city" validate:"required"`
	Street   string `json:"street" validate:"required"`
}

// subject returns the authenticated user id, aborting with 401 when it is missing.
func subject(c *gin.Context) (string, bool) {
	claims, ok := claimsOf(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, ctxmanage.GetTraceIdOfRequest(c)))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return claims.Subject, true
}

func (h *Handler) RegisterCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	userID, ok := subject(c)
	if !ok {
		return
	}
	var req registerCustomerRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	nc := customers.NewCustomer{UserID: userID, PhoneNumber: req.PhoneNumber}
	if req.BirthDate != "" {
		// already checked by the datetime tag
		bd, _ := time.Parse(birthDateLayout, req.BirthDate)
		nc.BirthDate = &bd
	}
	cust, err := h.custConf.Register(c.Request.Context(), nc)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("customer registered", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.UserID, userID), slog.String(logkey.CustomerID, strconv.FormatInt(cust.ID, 10)))
	c.JSON(http.StatusCreated, cust)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	userID, ok := subject(c)
	if !ok {
		return
	}
	cust, err := h.custConf.Resolve(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) SetAddress(c *gin.Context) {
	userID, ok := subject(c)
	if !ok {
		return
	}
	var req addressRequest
	if err := h.bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	a, err := h.custConf.SetAddress(c.Request.Context(), userID, customers.Address{
		Province: req.Province,
		City:     req.City,
		Street:   req.Street,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) GetAddress(c *gin.Context) {
	userID, ok := subject(c)
	if !ok {
		return
	}
	a, err := h.custConf.AddressOf(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
