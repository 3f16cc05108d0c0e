package routes

import (
	"restaurant-crm-api/src/infrastructure/rest/controllers/send"

	"github.com/gin-gonic/gin"
)

func SendRoutes(router *gin.RouterGroup, controller send.ISendController) {
	sendRoute := router.Group("/send")
	{
		sendRoute.POST("/message", controller.Message)
		sendRoute.GET("/messages", controller.History)
	}
}
