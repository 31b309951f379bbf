package context

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if ctx := c.Request.Context(); ctx != nil {
		if value := RequestIDFromContext(ctx); value != "" {
			return value
		}
	}
	return strings.TrimSpace(c.GetString("request_id"))
}

// Fields returns zap fields for every identity value present on the context.
func Fields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	sourceID, window := UnitFromContext(ctx)
	if sourceID != "" {
		fields = append(fields, zap.String("source_id", sourceID))
	}
	if window != "" {
		fields = append(fields, zap.String("window", window))
	}
	return fields
}
