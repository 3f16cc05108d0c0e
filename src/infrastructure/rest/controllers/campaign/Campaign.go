package campaign

import (
	"errors"
	"net/http"

	campaignUseCase "restaurant-crm-api/src/application/usecases/campaign"
	"restaurant-crm-api/src/domain"
	domainCampaign "restaurant-crm-api/src/domain/campaign"
	"restaurant-crm-api/src/domain/common"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ICampaignController interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Recipients(c *gin.Context)
	Cancel(c *gin.Context)
}

type CampaignController struct {
	commonService   common.CommonService
	campaignUseCase campaignUseCase.ICampaignUseCase
	Logger          *logger.Logger
}

func NewCampaignController(
	commonService common.CommonService,
	useCase campaignUseCase.ICampaignUseCase,
	loggerInstance *logger.Logger,
) ICampaignController {
	return &CampaignController{
		commonService:   commonService,
		campaignUseCase: useCase,
		Logger:          loggerInstance,
	}
}

func (c *CampaignController) bindError(ctx *gin.Context, err error, request interface{}) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.commonService.AppendValidationErrors(ctx, ve, request)
		return
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

func (c *CampaignController) bindID(ctx *gin.Context) (int, bool) {
	var request IDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return 0, false
	}
	return request.ID, true
}

func (c *CampaignController) Create(ctx *gin.Context) {
	var request CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Couldn't process request - invalid request", zap.Error(err))
		c.bindError(ctx, err, request)
		return
	}

	filter := domainCampaign.Filter(request.Audience.Filter)
	if filter == "" {
		filter = domainCampaign.FilterAll
	}
	created, err := c.campaignUseCase.Create(ctx.Request.Context(), &campaignUseCase.CreateCampaignRequest{
		RestaurantID:  middlewares.RestaurantID(ctx),
		CreatedBy:     middlewares.OwnerID(ctx),
		Message:       request.Message,
		MediaURL:      request.MediaURL,
		TemplateName:  request.TemplateName,
		ScheduledDate: request.ScheduledDate,
		ScheduledTime: request.ScheduledTime,
		ScheduledAt:   request.ScheduledAt,
		Timezone:      request.Timezone,
		DelaySeconds:  request.DelaySeconds,
		Audience:      domainCampaign.Audience{Filter: filter, CustomerIDs: request.Audience.CustomerIDs},
	})
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Campaign scheduled",
		zap.Int("campaignID", created.ID),
		zap.Int("recipients", created.TotalRecipients),
		zap.Time("scheduledFor", created.ScheduledFor))
	ctx.JSON(http.StatusCreated, domainToResponseMapper(created))
}

func (c *CampaignController) List(ctx *gin.Context) {
	var request ListRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		c.bindError(ctx, err, request)
		return
	}
	page := domain.Pagination{Page: request.Page, PageSize: request.PageSize}
	page.ValidateAndSetDefaults()

	result, err := c.campaignUseCase.List(ctx.Request.Context(), middlewares.RestaurantID(ctx), page)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	data := make([]CampaignResponse, 0, len(*result.Data))
	for i := range *result.Data {
		data = append(data, domainToResponseMapper(&(*result.Data)[i]))
	}
	ctx.JSON(http.StatusOK, PaginatedCampaigns{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (c *CampaignController) Get(ctx *gin.Context) {
	id, ok := c.bindID(ctx)
	if !ok {
		return
	}
	found, err := c.campaignUseCase.Get(ctx.Request.Context(), middlewares.RestaurantID(ctx), id)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, domainToResponseMapper(found))
}

func (c *CampaignController) Recipients(ctx *gin.Context) {
	id, ok := c.bindID(ctx)
	if !ok {
		return
	}
	recipients, err := c.campaignUseCase.Recipients(ctx.Request.Context(), middlewares.RestaurantID(ctx), id)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	data := make([]RecipientResponse, 0, len(*recipients))
	for i := range *recipients {
		data = append(data, recipientToResponseMapper(&(*recipients)[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"data": data})
}

func (c *CampaignController) Cancel(ctx *gin.Context) {
	id, ok := c.bindID(ctx)
	if !ok {
		return
	}
	cancelled, err := c.campaignUseCase.Cancel(ctx.Request.Context(), middlewares.RestaurantID(ctx), id)
	if err != nil {
		c.Logger.Warn("Campaign cancel rejected", zap.Error(err), zap.Int("campaignID", id))
		_ = ctx.Error(err)
		return
	}
	c.Logger.Info("Campaign cancelled", zap.Int("campaignID", id))
	ctx.JSON(http.StatusOK, domainToResponseMapper(cancelled))
}
