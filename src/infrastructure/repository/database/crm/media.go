package crm

import (
	"context"
	"errors"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMedia "restaurant-crm-api/src/domain/media"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Media struct {
	ID           int       `gorm:"primaryKey"`
	RestaurantID int       `gorm:"column:restaurant_id;index;not null"`
	CustomerID   *int      `gorm:"column:customer_id;index"`
	StoragePath  string    `gorm:"column:storage_path;not null"`
	MimeType     string    `gorm:"column:mime_type"`
	SizeBytes    int64     `gorm:"column:size_bytes"`
	UploadedBy   string    `gorm:"column:uploaded_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Media) TableName() string {
	return "media"
}

type MediaRepositoryInterface interface {
	domainMedia.IMediaService
}

type MediaRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewMediaRepository(db *gorm.DB, loggerInstance *logger.Logger) MediaRepositoryInterface {
	return &MediaRepository{DB: db, Logger: loggerInstance}
}

func (r *MediaRepository) Create(ctx context.Context, m *domainMedia.Media) (*domainMedia.Media, error) {
	model := &Media{
		RestaurantID: m.RestaurantID,
		CustomerID:   m.CustomerID,
		StoragePath:  m.StoragePath,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		UploadedBy:   m.UploadedBy,
	}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		r.Logger.Error("Error saving media record", zap.Error(err), zap.String("path", m.StoragePath))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (r *MediaRepository) GetByID(ctx context.Context, restaurantID, id int) (*domainMedia.Media, error) {
	var model Media
	if err := r.DB.WithContext(ctx).Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting media record", zap.Error(err), zap.Int("mediaID", id))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (m *Media) toDomainMapper() *domainMedia.Media {
	return &domainMedia.Media{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		CustomerID:   m.CustomerID,
		StoragePath:  m.StoragePath,
		MimeType:     m.MimeType,
		SizeBytes:    m.SizeBytes,
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
	}
}
