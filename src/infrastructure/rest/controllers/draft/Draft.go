package draft

import (
	"errors"
	"net/http"

	draftUseCase "restaurant-crm-api/src/application/usecases/draft"
	"restaurant-crm-api/src/domain/common"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type DraftRequest struct {
	CampaignType string `json:"campaign_type" binding:"required,oneof=birthday welcome winback promotion loyalty"`
	CustomerName string `json:"customer_name" binding:"required,max=200"`
	Promotion    string `json:"promotion" binding:"max=500"`
}

type DraftResponse struct {
	Message string `json:"message"`
}

type IDraftController interface {
	Generate(c *gin.Context)
}

type DraftController struct {
	commonService common.CommonService
	draftUseCase  draftUseCase.IDraftUseCase
	Logger        *logger.Logger
}

func NewDraftController(commonService common.CommonService, useCase draftUseCase.IDraftUseCase, loggerInstance *logger.Logger) IDraftController {
	return &DraftController{commonService: commonService, draftUseCase: useCase, Logger: loggerInstance}
}

func (c *DraftController) Generate(ctx *gin.Context) {
	var request DraftRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message, err := c.draftUseCase.Generate(ctx.Request.Context(), &draftUseCase.DraftRequest{
		CampaignType: draftUseCase.CampaignType(request.CampaignType),
		CustomerName: request.CustomerName,
		Promotion:    request.Promotion,
	})
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, DraftResponse{Message: message})
}
