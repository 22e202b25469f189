package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/agendahub/agenda-api/internal/handler"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

// ErrorHandler turns errors pushed via c.Error into the response envelope.
// Application errors map to their own status and expose their message;
// anything else answers 500 with a generic message and the detail stays in
// the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(lastErr, &appErr) {
			c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
			return
		}

		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
	}
}
