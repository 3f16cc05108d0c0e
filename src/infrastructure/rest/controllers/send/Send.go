package send

import (
	"errors"
	"net/http"
	"time"

	"restaurant-crm-api/src/application/usecases/message"
	"restaurant-crm-api/src/domain/common"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ISendController interface {
	Message(c *gin.Context)
	History(c *gin.Context)
}

type SendController struct {
	commonService  common.CommonService
	messageUseCase message.IMessageUseCase
	Logger         *logger.Logger
}

func NewSendController(
	commonService common.CommonService,
	messageUseCase message.IMessageUseCase,
	loggerInstance *logger.Logger,
) ISendController {
	return &SendController{
		commonService:  commonService,
		messageUseCase: messageUseCase,
		Logger:         loggerInstance,
	}
}

// Message sends one message right away and answers with the gateway outcome.
func (c *SendController) Message(ctx *gin.Context) {
	var request MessageRequest
	err := ctx.ShouldBindJSON(&request)
	if err != nil {
		c.Logger.Error("Couldn't process request - invalid request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	restaurantID := middlewares.RestaurantID(ctx)
	useCaseResponse, err := c.messageUseCase.SendMessage(ctx.Request.Context(), &message.MessageRequest{
		RestaurantID: restaurantID,
		CustomerID:   request.CustomerID,
		Message:      request.Message,
		MediaURL:     request.MediaURL,
		TemplateName: request.TemplateName,
	})
	if err != nil {
		c.Logger.Error("Error sending message", zap.Error(err), zap.Int("customerID", request.CustomerID))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, &MessageResponse{
		Status:    string(useCaseResponse.Status),
		MessageID: useCaseResponse.MessageID,
		LogID:     useCaseResponse.LogID,
	})
}

// History lists the message log for one customer, newest first.
func (c *SendController) History(ctx *gin.Context) {
	var request HistoryRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	logs, err := c.messageUseCase.History(ctx.Request.Context(), middlewares.RestaurantID(ctx), request.CustomerID, request.Limit)
	if err != nil {
		c.Logger.Error("Error listing message history", zap.Error(err), zap.Int("customerID", request.CustomerID))
		_ = ctx.Error(err)
		return
	}

	response := make([]MessageLogResponse, 0, len(*logs))
	for _, entry := range *logs {
		response = append(response, MessageLogResponse{
			ID:               entry.ID,
			CustomerID:       entry.CustomerID,
			CampaignID:       entry.CampaignID,
			TemplateName:     entry.TemplateName,
			Message:          entry.Body,
			MediaURL:         entry.MediaURL,
			Status:           string(entry.Status),
			Via:              entry.Via,
			GatewayMessageID: entry.GatewayMessageID,
			ErrorMessage:     entry.ErrorMessage,
			SentAt:           entry.SentAt.Format(time.RFC3339),
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"data": response})
}
