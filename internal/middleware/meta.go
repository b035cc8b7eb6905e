package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{"started_at": time.Now()})
		c.Next()
	}
}

// ResponseMeta returns the metadata for the current response with processing time filled in.
func ResponseMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, len(extra)+1)
	if value, exists := c.Get(responseMetaKey); exists {
		if typed, ok := value.(map[string]interface{}); ok {
			if started, ok := typed["started_at"].(time.Time); ok {
				meta["processing_time_ms"] = time.Since(started).Milliseconds()
			}
		}
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}
