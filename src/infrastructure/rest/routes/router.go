package routes

import (
	"strings"
	"time"

	"restaurant-crm-api/src/infrastructure/di"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the shared middleware chain and every route.
func NewRouter(appContext *di.ApplicationContext) *gin.Engine {
	if appContext.Config.IsDevelopment() {
		appContext.Logger.SetupGinWithZapLoggerInDevelopment()
	} else {
		appContext.Logger.SetupGinWithZapLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(appContext.Config.Server.AllowedOrigins)))
	router.Use(middlewares.CommonHeaders)
	router.Use(appContext.Logger.GinZapLogger())
	router.Use(middlewares.ErrorHandler())

	ApplicationRouter(router, appContext)
	return router
}

func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Scheduler-Token", middlewares.RequestIDHeader},
		ExposeHeaders: []string{middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if allowedOrigins == "" || allowedOrigins == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
