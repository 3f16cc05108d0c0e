package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	ContextOwnerID      = "ownerID"
	ContextRestaurantID = "restaurantID"
)

// AuthJWTMiddleware validates the HS256 bearer token, resolves its subject to the
// restaurant the caller owns and stores both in the context.
func AuthJWTMiddleware(secret string, restaurants domainRestaurant.IRestaurantService, loggerInstance *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token not provided"})
			return
		}
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "JWT_ACCESS_SECRET_KEY not configured"})
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Check token expiration
		if _, ok := claims["exp"].(float64); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		ownerID, ok := claims["sub"].(string)
		if !ok || ownerID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid subject in token"})
			return
		}

		restaurant, err := restaurants.GetByOwnerID(c.Request.Context(), ownerID)
		if err != nil {
			loggerInstance.Warn("No restaurant for token subject", zap.String("ownerID", ownerID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No restaurant registered for this account"})
			return
		}

		c.Set(ContextOwnerID, ownerID)
		c.Set(ContextRestaurantID, restaurant.ID)
		c.Next()
	}
}

// SchedulerTokenMiddleware guards the processor trigger used by external cron jobs.
func SchedulerTokenMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "SCHEDULER_TOKEN not configured"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Scheduler-Token")), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid scheduler token"})
			return
		}
		c.Next()
	}
}

func RestaurantID(c *gin.Context) int {
	return c.GetInt(ContextRestaurantID)
}

func OwnerID(c *gin.Context) string {
	return c.GetString(ContextOwnerID)
}
