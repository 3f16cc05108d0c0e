package routes

import (
	"restaurant-crm-api/src/infrastructure/rest/controllers/campaign"

	"github.com/gin-gonic/gin"
)

func CampaignRoutes(router *gin.RouterGroup, controller campaign.ICampaignController) {
	campaignRoute := router.Group("/campaigns")
	{
		campaignRoute.POST("", controller.Create)
		campaignRoute.GET("", controller.List)
		campaignRoute.GET("/:id", controller.Get)
		campaignRoute.GET("/:id/recipients", controller.Recipients)
		campaignRoute.POST("/:id/cancel", controller.Cancel)
	}
}
