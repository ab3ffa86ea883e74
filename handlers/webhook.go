package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"store-service/internal/orders"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

const maxWebhookBodyBytes = int64(65536)

// Webhook applies Stripe payment outcomes to the order named in the intent's metadata.
func (h *Handler) Webhook(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.Error("reading webhook body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{Tolerance: webhook.DefaultTolerance, IgnoreAPIVersionMismatch: true})
	if err != nil {
		slog.Error("webhook signature verification failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var next orders.Status
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		next = orders.StatusPaid
	case stripe.EventTypePaymentIntentCanceled:
		next = orders.StatusCanceled
	default:
		slog.Info("unhandled event type", slog.String(logkey.TraceID, traceId), slog.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"message": "event type not handled", "event": event.Type})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		slog.Error("failed to unmarshal payment intent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed payment intent"})
		return
	}
	orderID, err := orderIDFromMetadata(intent.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}

	if _, err := h.o.UpdateStatus(c.Request.Context(), orderID, next); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("payment status applied", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, strconv.FormatInt(orderID, 10)),
		slog.String("payment_intent", intent.ID), slog.String("Status", next.Label()))
	c.Status(http.StatusOK)
}
