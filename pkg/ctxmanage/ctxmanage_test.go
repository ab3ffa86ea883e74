package ctxmanage

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetTraceId(t *testing.T) {
	assert.Equal(t, "Unknown", GetTraceId(context.Background()))

	ctx := WithTraceId(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceId(ctx))
}

func TestGetTraceIdOfRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/", nil)
	c.Request = req.WithContext(WithTraceId(req.Context(), "trace-1"))

	assert.Equal(t, "trace-1", GetTraceIdOfRequest(c))
}
