package crm

import (
	"context"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMessage "restaurant-crm-api/src/domain/message"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageLog is the append-only audit row written for every send attempt.
type MessageLog struct {
	ID               int       `gorm:"primaryKey"`
	CustomerID       int       `gorm:"column:customer_id;index;not null"`
	RestaurantID     int       `gorm:"column:restaurant_id;index;not null"`
	CampaignID       *int      `gorm:"column:scheduled_message_id;index"`
	TemplateName     string    `gorm:"column:template_name"`
	Body             string    `gorm:"column:body;type:text"`
	MediaURL         string    `gorm:"column:media_url;type:text"`
	Status           string    `gorm:"column:status;not null"`
	Via              string    `gorm:"column:via;not null"`
	GatewayMessageID string    `gorm:"column:gateway_message_id"`
	ErrorMessage     string    `gorm:"column:error_message;type:text"`
	SentAt           time.Time `gorm:"column:sent_at;index"`
}

func (MessageLog) TableName() string {
	return "messages"
}

type MessageLogRepositoryInterface interface {
	domainMessage.IMessageLogService
}

type MessageLogRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewMessageLogRepository(db *gorm.DB, loggerInstance *logger.Logger) MessageLogRepositoryInterface {
	return &MessageLogRepository{DB: db, Logger: loggerInstance}
}

func (r *MessageLogRepository) Create(ctx context.Context, entry *domainMessage.Log) (*domainMessage.Log, error) {
	model := &MessageLog{
		CustomerID:       entry.CustomerID,
		RestaurantID:     entry.RestaurantID,
		CampaignID:       entry.CampaignID,
		TemplateName:     entry.TemplateName,
		Body:             entry.Body,
		MediaURL:         entry.MediaURL,
		Status:           string(entry.Status),
		Via:              entry.Via,
		GatewayMessageID: entry.GatewayMessageID,
		ErrorMessage:     entry.ErrorMessage,
		SentAt:           entry.SentAt,
	}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		r.Logger.Error("Error appending message log", zap.Error(err), zap.Int("customerID", entry.CustomerID))
		return nil, domainErrors.NewAppError(err, domainErrors.StoreWriteError)
	}
	return model.toDomainMapper(), nil
}

func (r *MessageLogRepository) ListByCustomer(ctx context.Context, restaurantID, customerID int, limit int) (*[]domainMessage.Log, error) {
	var models []MessageLog
	err := r.DB.WithContext(ctx).
		Where("restaurant_id = ? AND customer_id = ?", restaurantID, customerID).
		Order("sent_at DESC").Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.Logger.Error("Error listing message log", zap.Error(err), zap.Int("customerID", customerID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return messageLogArrayToDomainMapper(&models), nil
}

func (r *MessageLogRepository) ListByCampaign(ctx context.Context, campaignID int) (*[]domainMessage.Log, error) {
	var models []MessageLog
	if err := r.DB.WithContext(ctx).Where("scheduled_message_id = ?", campaignID).Order("id ASC").Find(&models).Error; err != nil {
		r.Logger.Error("Error listing campaign message log", zap.Error(err), zap.Int("campaignID", campaignID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return messageLogArrayToDomainMapper(&models), nil
}

func (m *MessageLog) toDomainMapper() *domainMessage.Log {
	return &domainMessage.Log{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		RestaurantID:     m.RestaurantID,
		CampaignID:       m.CampaignID,
		TemplateName:     m.TemplateName,
		Body:             m.Body,
		MediaURL:         m.MediaURL,
		Status:           domainMessage.Status(m.Status),
		Via:              m.Via,
		GatewayMessageID: m.GatewayMessageID,
		ErrorMessage:     m.ErrorMessage,
		SentAt:           m.SentAt,
	}
}

func messageLogArrayToDomainMapper(models *[]MessageLog) *[]domainMessage.Log {
	out := make([]domainMessage.Log, len(*models))
	for i, model := range *models {
		out[i] = *model.toDomainMapper()
	}
	return &out
}
