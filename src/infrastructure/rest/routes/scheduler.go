package routes

import (
	"restaurant-crm-api/src/infrastructure/rest/controllers/scheduler"

	"github.com/gin-gonic/gin"
)

func SchedulerRoutes(router *gin.RouterGroup, controller scheduler.ISchedulerController, guard gin.HandlerFunc) {
	schedulerRoute := router.Group("/scheduler")
	schedulerRoute.Use(guard)
	{
		schedulerRoute.POST("/run", controller.Run)
	}
}
