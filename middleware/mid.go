package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"store-service/internal/auth"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

type Mid struct {
	k *auth.Keys
}

func NewMid(k *auth.Keys) (Mid, error) {
	if k == nil {
		return Mid{}, errors.New("auth keys are nil")
	}
	return Mid{k: k}, nil
}

// Authentication verifies the bearer token and puts its claims in the request context.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		traceId := ctxmanage.GetTraceId(ctx)

		parts := strings.Fields(c.Request.Header.Get("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			slog.Error("missing or malformed authorization header", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "expected authorization header format: Bearer <token>"})
			return
		}

		claims, err := m.k.ValidateToken(parts[1])
		if err != nil {
			slog.Error("token validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx = context.WithValue(ctx, auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize runs next only when the caller holds at least one of roles.
func (m *Mid) Authorize(next gin.HandlerFunc, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)
		claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		if !ok {
			slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				next(c)
				return
			}
		}
		slog.Error("caller lacks required role", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.Any("roles", roles))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}
