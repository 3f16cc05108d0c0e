package middlewares

import (
	"errors"
	"net/http"

	domainErrors "restaurant-crm-api/src/domain/errors"

	"github.com/gin-gonic/gin"
)

var statusByType = map[string]int{
	domainErrors.NotFound:              http.StatusNotFound,
	domainErrors.ValidationError:       http.StatusBadRequest,
	domainErrors.EmptyAudience:         http.StatusBadRequest,
	domainErrors.InvalidSchedule:       http.StatusBadRequest,
	domainErrors.InvalidTransition:     http.StatusConflict,
	domainErrors.ResourceAlreadyExists: http.StatusConflict,
	domainErrors.NotAuthenticated:      http.StatusUnauthorized,
	domainErrors.NotAuthorized:         http.StatusForbidden,
	domainErrors.ChannelTransient:      http.StatusBadGateway,
	domainErrors.ChannelNonRecoverable: http.StatusBadGateway,
	domainErrors.UpstreamError:         http.StatusBadGateway,
	domainErrors.ServiceUnavailable:    http.StatusServiceUnavailable,
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByType[appErr.Type]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders the last error a handler attached with ctx.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := StatusFor(err)
		var appErr *domainErrors.AppError
		body := gin.H{"error": "Internal server error"}
		if errors.As(err, &appErr) && status != http.StatusInternalServerError {
			body = gin.H{"error": appErr.Error(), "type": appErr.Type}
		}
		c.JSON(status, body)
	}
}
