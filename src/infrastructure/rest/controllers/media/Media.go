package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	mediaUseCase "restaurant-crm-api/src/application/usecases/media"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadResponse struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

type IMediaController interface {
	Upload(c *gin.Context)
}

type MediaController struct {
	mediaUseCase mediaUseCase.IMediaUseCase
	maxBytes     int64
	Logger       *logger.Logger
}

func NewMediaController(useCase mediaUseCase.IMediaUseCase, maxBytes int64, loggerInstance *logger.Logger) IMediaController {
	return &MediaController{mediaUseCase: useCase, maxBytes: maxBytes, Logger: loggerInstance}
}

// Upload stores a multipart "file" and answers with its public URL.
func (c *MediaController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if c.maxBytes > 0 && fileHeader.Size > c.maxBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds " + strconv.FormatInt(c.maxBytes, 10) + " bytes"})
		return
	}

	var customerID *int
	if raw := ctx.PostForm("customer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "customer_id must be a positive integer"})
			return
		}
		customerID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		_ = ctx.Error(errors.Join(errors.New("reading upload"), err))
		return
	}

	result, err := c.mediaUseCase.Upload(ctx.Request.Context(), &mediaUseCase.UploadRequest{
		RestaurantID: middlewares.RestaurantID(ctx),
		CustomerID:   customerID,
		UploadedBy:   middlewares.OwnerID(ctx),
		Filename:     fileHeader.Filename,
		Data:         data,
	})
	if err != nil {
		c.Logger.Warn("Media upload rejected", zap.Error(err), zap.String("filename", fileHeader.Filename))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, UploadResponse{
		ID:        result.Media.ID,
		URL:       result.URL,
		Path:      result.Media.StoragePath,
		MimeType:  result.Media.MimeType,
		SizeBytes: result.Media.SizeBytes,
	})
}
