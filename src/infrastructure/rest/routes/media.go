package routes

import (
	"restaurant-crm-api/src/infrastructure/rest/controllers/draft"
	"restaurant-crm-api/src/infrastructure/rest/controllers/media"
	"restaurant-crm-api/src/infrastructure/rest/controllers/restaurant"

	"github.com/gin-gonic/gin"
)

func MediaRoutes(router *gin.RouterGroup, controller media.IMediaController) {
	router.POST("/media", controller.Upload)
}

func DraftRoutes(router *gin.RouterGroup, controller draft.IDraftController) {
	router.POST("/drafts", controller.Generate)
}

func RestaurantRoutes(router *gin.RouterGroup, controller restaurant.IRestaurantController) {
	restaurantRoute := router.Group("/restaurant")
	{
		restaurantRoute.GET("", controller.Me)
		restaurantRoute.GET("/qrcode", controller.QRCode)
	}
}
