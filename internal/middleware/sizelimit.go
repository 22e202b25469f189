package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendahub/agenda-api/internal/handler"
)

type SizeLimitConfig struct {
	MaxBodyBytes int64
}

// DefaultSizeLimitConfig caps bodies at 1MB. The largest legitimate payload
// is a booking with an inline customer, nowhere near that.
func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{MaxBodyBytes: 1 << 20}
}

// SizeLimit rejects oversized requests before any handler buffers them. A
// declared Content-Length over the cap answers 413 outright; chunked bodies
// are capped by MaxBytesReader and fail inside the JSON bind instead.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodyBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				handler.NewErrorResponse("request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodyBytes)
		c.Next()
	}
}
