package routes

import (
	"net/http"

	"restaurant-crm-api/src/infrastructure/di"

	"github.com/gin-gonic/gin"
)

func ApplicationRouter(router *gin.Engine, appContext *di.ApplicationContext) {
	router.Static("/media", appContext.Storage.Root())

	v1 := router.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	SchedulerRoutes(v1, appContext.SchedulerController, appContext.SchedulerMiddleware)

	authenticated := v1.Group("")
	authenticated.Use(appContext.AuthMiddleware)
	{
		CampaignRoutes(authenticated, appContext.CampaignController)
		SendRoutes(authenticated, appContext.SendController)
		MediaRoutes(authenticated, appContext.MediaController)
		DraftRoutes(authenticated, appContext.DraftController)
		RestaurantRoutes(authenticated, appContext.RestaurantController)
	}
}
