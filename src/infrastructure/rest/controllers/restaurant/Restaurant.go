package restaurant

import (
	"net/http"

	restaurantUseCase "restaurant-crm-api/src/application/usecases/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

type RestaurantResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
	ChatLink       string `json:"chat_link,omitempty"`
}

type QRCodeRequest struct {
	Size int `form:"size" binding:"omitempty,gte=64,lte=1024"`
}

type IRestaurantController interface {
	Me(c *gin.Context)
	QRCode(c *gin.Context)
}

type RestaurantController struct {
	restaurantUseCase restaurantUseCase.IRestaurantUseCase
	Logger            *logger.Logger
}

func NewRestaurantController(useCase restaurantUseCase.IRestaurantUseCase, loggerInstance *logger.Logger) IRestaurantController {
	return &RestaurantController{restaurantUseCase: useCase, Logger: loggerInstance}
}

func (c *RestaurantController) Me(ctx *gin.Context) {
	rest, err := c.restaurantUseCase.GetByOwnerID(ctx.Request.Context(), middlewares.OwnerID(ctx))
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, RestaurantResponse{
		ID:             rest.ID,
		Name:           rest.Name,
		WhatsAppNumber: rest.WhatsAppNumber,
		ChatLink:       restaurantUseCase.ChatLink(rest.WhatsAppNumber),
	})
}

// QRCode renders the click-to-chat QR code as a PNG image.
func (c *RestaurantController) QRCode(ctx *gin.Context) {
	var request QRCodeRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "size must be an integer between 64 and 1024"})
		return
	}
	png, err := c.restaurantUseCase.QRCode(ctx.Request.Context(), middlewares.RestaurantID(ctx), request.Size)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
