package middlewares

import (
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const RequestIDHeader = "X-Request-ID"

// CommonHeaders sets security headers and propagates or assigns a request id.
func CommonHeaders(c *gin.Context) {
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		if id, err := uuid.NewV4(); err == nil {
			requestID = id.String()
		}
	}
	c.Set(logger.RequestIDKey, requestID)
	c.Header(RequestIDHeader, requestID)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Next()
}
