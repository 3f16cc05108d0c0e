package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-crm-api/src/domain"
	domainCampaign "restaurant-crm-api/src/domain/campaign"
	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Campaign is the database model for scheduled bulk messages.
type Campaign struct {
	ID              int        `gorm:"primaryKey"`
	RestaurantID    int        `gorm:"column:restaurant_id;index;not null"`
	CreatedBy       string     `gorm:"column:created_by"`
	Message         string     `gorm:"column:message;type:text;not null"`
	MediaURL        string     `gorm:"column:media_url;type:text"`
	TemplateName    string     `gorm:"column:template_name"`
	ScheduledFor    time.Time  `gorm:"column:scheduled_for;not null;index:idx_scheduled_messages_due,priority:2"`
	DelaySeconds    int        `gorm:"column:delay_seconds;not null"`
	TotalRecipients int        `gorm:"column:total_recipients;not null"`
	SentCount       int        `gorm:"column:sent_count;not null"`
	FailedCount     int        `gorm:"column:failed_count;not null"`
	Status          string     `gorm:"column:status;not null;index:idx_scheduled_messages_due,priority:1"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	LeaseOwner      string     `gorm:"column:lease_owner"`
	LeaseExpiresAt  *time.Time `gorm:"column:lease_expires_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Campaign) TableName() string {
	return "scheduled_messages"
}

var openStatuses = []string{string(domainCampaign.StatusPending), string(domainCampaign.StatusProcessing)}

// CampaignRepositoryInterface is the campaign store: campaigns, their recipient
// snapshot, and the conditional updates the processor relies on.
type CampaignRepositoryInterface interface {
	CreateWithRecipients(ctx context.Context, campaign *domainCampaign.Campaign, customerIDs []int) (*domainCampaign.Campaign, error)
	GetByID(ctx context.Context, id int) (*domainCampaign.Campaign, error)
	GetByRestaurant(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error)
	ListByRestaurant(ctx context.Context, restaurantID int, page domain.Pagination) (*domainCampaign.SearchResult, error)
	ListDue(ctx context.Context, now time.Time, limit int) (*[]domainCampaign.Campaign, error)
	Claim(ctx context.Context, id int, owner string, now, leaseUntil time.Time) (bool, error)
	RenewLease(ctx context.Context, id int, owner string, leaseUntil time.Time) error
	ReleaseLease(ctx context.Context, id int, owner string) error
	Cancel(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error)
	Complete(ctx context.Context, id int, at time.Time) (bool, error)
	ListRecipients(ctx context.Context, campaignID int) (*[]domainCampaign.Recipient, error)
	ListActionableRecipients(ctx context.Context, campaignID int) (*[]domainCampaign.Recipient, error)
	CountActionableRecipients(ctx context.Context, campaignID int) (int64, error)
	ApplyOutcome(ctx context.Context, campaignID int, outcome *domainCampaign.Outcome) (bool, error)
}

type CampaignRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewCampaignRepository(db *gorm.DB, loggerInstance *logger.Logger) CampaignRepositoryInterface {
	return &CampaignRepository{DB: db, Logger: loggerInstance}
}

func (r *CampaignRepository) CreateWithRecipients(ctx context.Context, campaignDomain *domainCampaign.Campaign, customerIDs []int) (*domainCampaign.Campaign, error) {
	if len(customerIDs) == 0 {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.EmptyAudience)
	}
	model := campaignFromDomainMapper(campaignDomain)
	model.Status = string(domainCampaign.StatusPending)
	model.TotalRecipients = len(customerIDs)
	model.SentCount, model.FailedCount = 0, 0

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		recipients := make([]Recipient, len(customerIDs))
		for i, customerID := range customerIDs {
			recipients[i] = Recipient{
				CampaignID: model.ID,
				CustomerID: customerID,
				Status:     string(domainCampaign.RecipientPending),
			}
		}
		return tx.CreateInBatches(&recipients, 500).Error
	})
	if err != nil {
		r.Logger.Error("Error creating campaign", zap.Error(err), zap.Int("restaurantID", campaignDomain.RestaurantID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	r.Logger.Info("Campaign created",
		zap.Int("campaignID", model.ID),
		zap.Int("restaurantID", model.RestaurantID),
		zap.Int("recipients", model.TotalRecipients))
	return model.toDomainMapper(), nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*domainCampaign.Campaign, error) {
	var model Campaign
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, r.mapReadError(err, "campaign", id)
	}
	return model.toDomainMapper(), nil
}

func (r *CampaignRepository) GetByRestaurant(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	var model Campaign
	if err := r.DB.WithContext(ctx).Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&model).Error; err != nil {
		return nil, r.mapReadError(err, "campaign", id)
	}
	return model.toDomainMapper(), nil
}

func (r *CampaignRepository) ListByRestaurant(ctx context.Context, restaurantID int, page domain.Pagination) (*domainCampaign.SearchResult, error) {
	page.ValidateAndSetDefaults()
	query := r.DB.WithContext(ctx).Model(&Campaign{}).Where("restaurant_id = ?", restaurantID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.Logger.Error("Error counting campaigns", zap.Error(err), zap.Int("restaurantID", restaurantID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}

	var models []Campaign
	if err := query.Order("scheduled_for DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&models).Error; err != nil {
		r.Logger.Error("Error listing campaigns", zap.Error(err), zap.Int("restaurantID", restaurantID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}

	return &domainCampaign.SearchResult{
		Data:       campaignArrayToDomainMapper(&models),
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: domain.TotalPages(total, page.PageSize),
	}, nil
}

// ListDue returns open campaigns whose time has come and whose lease is free, earliest first.
func (r *CampaignRepository) ListDue(ctx context.Context, now time.Time, limit int) (*[]domainCampaign.Campaign, error) {
	var models []Campaign
	err := r.DB.WithContext(ctx).
		Where("status IN ? AND scheduled_for <= ?", openStatuses, now).
		Where("lease_expires_at IS NULL OR lease_expires_at < ?", now).
		Order("scheduled_for ASC").Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.Logger.Error("Error listing due campaigns", zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return campaignArrayToDomainMapper(&models), nil
}

// Claim marks the campaign processing and takes its lease. It only succeeds
// when the campaign is still open and the lease is free, expired, or already ours.
func (r *CampaignRepository) Claim(ctx context.Context, id int, owner string, now, leaseUntil time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND status IN ?", id, openStatuses).
		Where("lease_expires_at IS NULL OR lease_expires_at < ? OR lease_owner = ?", now, owner).
		Updates(map[string]interface{}{
			"status":           string(domainCampaign.StatusProcessing),
			"lease_owner":      owner,
			"lease_expires_at": leaseUntil,
		})
	if res.Error != nil {
		r.Logger.Error("Error claiming campaign", zap.Error(res.Error), zap.Int("campaignID", id))
		return false, domainErrors.NewAppError(res.Error, domainErrors.StoreWriteError)
	}
	return res.RowsAffected == 1, nil
}

func (r *CampaignRepository) RenewLease(ctx context.Context, id int, owner string, leaseUntil time.Time) error {
	err := r.DB.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND lease_owner = ?", id, owner).
		Update("lease_expires_at", leaseUntil).Error
	if err != nil {
		r.Logger.Warn("Error renewing campaign lease", zap.Error(err), zap.Int("campaignID", id))
		return domainErrors.NewAppError(err, domainErrors.StoreWriteError)
	}
	return nil
}

func (r *CampaignRepository) ReleaseLease(ctx context.Context, id int, owner string) error {
	err := r.DB.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND lease_owner = ?", id, owner).
		Updates(map[string]interface{}{"lease_owner": "", "lease_expires_at": nil}).Error
	if err != nil {
		r.Logger.Warn("Error releasing campaign lease", zap.Error(err), zap.Int("campaignID", id))
		return domainErrors.NewAppError(err, domainErrors.StoreWriteError)
	}
	return nil
}

func (r *CampaignRepository) Cancel(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	res := r.DB.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND restaurant_id = ? AND status = ?", id, restaurantID, string(domainCampaign.StatusPending)).
		Update("status", string(domainCampaign.StatusCancelled))
	if res.Error != nil {
		r.Logger.Error("Error cancelling campaign", zap.Error(res.Error), zap.Int("campaignID", id))
		return nil, domainErrors.NewAppError(res.Error, domainErrors.StoreWriteError)
	}

	current, err := r.GetByRestaurant(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		r.Logger.Warn("Campaign not cancellable", zap.Int("campaignID", id), zap.String("status", string(current.Status)))
		return current, domainErrors.NewAppError(
			fmt.Errorf("campaign %d is %s and can no longer be cancelled", id, current.Status),
			domainErrors.InvalidTransition,
		)
	}
	r.Logger.Info("Campaign cancelled", zap.Int("campaignID", id), zap.Int("restaurantID", restaurantID))
	return current, nil
}

// Complete stamps completed_at only on the first transition out of processing.
func (r *CampaignRepository) Complete(ctx context.Context, id int, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&Campaign{}).
		Where("id = ? AND status = ? AND completed_at IS NULL", id, string(domainCampaign.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":           string(domainCampaign.StatusCompleted),
			"completed_at":     at,
			"lease_owner":      "",
			"lease_expires_at": nil,
		})
	if res.Error != nil {
		r.Logger.Error("Error completing campaign", zap.Error(res.Error), zap.Int("campaignID", id))
		return false, domainErrors.NewAppError(res.Error, domainErrors.StoreWriteError)
	}
	return res.RowsAffected == 1, nil
}

func (r *CampaignRepository) ListRecipients(ctx context.Context, campaignID int) (*[]domainCampaign.Recipient, error) {
	var models []Recipient
	if err := r.DB.WithContext(ctx).Where("scheduled_message_id = ?", campaignID).Order("id ASC").Find(&models).Error; err != nil {
		r.Logger.Error("Error listing recipients", zap.Error(err), zap.Int("campaignID", campaignID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return recipientArrayToDomainMapper(&models), nil
}

func (r *CampaignRepository) actionable(ctx context.Context, campaignID int) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&Recipient{}).
		Where("scheduled_message_id = ?", campaignID).
		Where("status = ? OR (status = ? AND permanent = ? AND retry_count < ?)",
			string(domainCampaign.RecipientPending),
			string(domainCampaign.RecipientFailed), false, domainCampaign.MaxRetries)
}

func (r *CampaignRepository) ListActionableRecipients(ctx context.Context, campaignID int) (*[]domainCampaign.Recipient, error) {
	var models []Recipient
	if err := r.actionable(ctx, campaignID).Order("id ASC").Find(&models).Error; err != nil {
		r.Logger.Error("Error listing actionable recipients", zap.Error(err), zap.Int("campaignID", campaignID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return recipientArrayToDomainMapper(&models), nil
}

func (r *CampaignRepository) CountActionableRecipients(ctx context.Context, campaignID int) (int64, error) {
	var count int64
	if err := r.actionable(ctx, campaignID).Count(&count).Error; err != nil {
		r.Logger.Error("Error counting actionable recipients", zap.Error(err), zap.Int("campaignID", campaignID))
		return 0, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return count, nil
}

// ApplyOutcome writes one attempt result. The recipient row is updated only if
// its version still matches and it is not already sent; the campaign counters
// move in the same transaction. It returns false when another writer won.
func (r *CampaignRepository) ApplyOutcome(ctx context.Context, campaignID int, outcome *domainCampaign.Outcome) (bool, error) {
	next := outcome.Recipient
	applied := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Recipient{}).
			Where("id = ? AND version = ? AND status <> ?", next.ID, outcome.ExpectedVersion, string(domainCampaign.RecipientSent)).
			Updates(map[string]interface{}{
				"status":        string(next.Status),
				"retry_count":   next.RetryCount,
				"permanent":     next.Permanent,
				"last_retry_at": next.LastRetryAt,
				"error_message": next.ErrorMessage,
				"sent_at":       next.SentAt,
				"version":       next.Version,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		if outcome.SentDelta == 0 && outcome.FailedDelta == 0 {
			return nil
		}
		return tx.Model(&Campaign{}).Where("id = ?", campaignID).
			Updates(map[string]interface{}{
				"sent_count":   gorm.Expr("sent_count + ?", outcome.SentDelta),
				"failed_count": gorm.Expr("failed_count + ?", outcome.FailedDelta),
			}).Error
	})
	if err != nil {
		r.Logger.Error("Error writing recipient outcome", zap.Error(err),
			zap.Int("campaignID", campaignID), zap.Int("recipientID", next.ID))
		return false, domainErrors.NewAppError(err, domainErrors.StoreWriteError)
	}
	return applied, nil
}

func (r *CampaignRepository) mapReadError(err error, entity string, id int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.Logger.Warn("Record not found", zap.String("entity", entity), zap.Int("id", id))
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	r.Logger.Error("Error reading record", zap.Error(err), zap.String("entity", entity), zap.Int("id", id))
	return domainErrors.NewAppError(err, domainErrors.RepositoryError)
}

func (c *Campaign) toDomainMapper() *domainCampaign.Campaign {
	return &domainCampaign.Campaign{
		ID:              c.ID,
		RestaurantID:    c.RestaurantID,
		CreatedBy:       c.CreatedBy,
		Message:         c.Message,
		MediaURL:        c.MediaURL,
		TemplateName:    c.TemplateName,
		ScheduledFor:    c.ScheduledFor,
		DelaySeconds:    c.DelaySeconds,
		TotalRecipients: c.TotalRecipients,
		SentCount:       c.SentCount,
		FailedCount:     c.FailedCount,
		Status:          domainCampaign.Status(c.Status),
		CompletedAt:     c.CompletedAt,
		LeaseOwner:      c.LeaseOwner,
		LeaseExpiresAt:  c.LeaseExpiresAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func campaignFromDomainMapper(c *domainCampaign.Campaign) *Campaign {
	return &Campaign{
		ID:              c.ID,
		RestaurantID:    c.RestaurantID,
		CreatedBy:       c.CreatedBy,
		Message:         c.Message,
		MediaURL:        c.MediaURL,
		TemplateName:    c.TemplateName,
		ScheduledFor:    c.ScheduledFor,
		DelaySeconds:    c.DelaySeconds,
		TotalRecipients: c.TotalRecipients,
		SentCount:       c.SentCount,
		FailedCount:     c.FailedCount,
		Status:          string(c.Status),
		CompletedAt:     c.CompletedAt,
	}
}

func campaignArrayToDomainMapper(models *[]Campaign) *[]domainCampaign.Campaign {
	out := make([]domainCampaign.Campaign, len(*models))
	for i, model := range *models {
		out[i] = *model.toDomainMapper()
	}
	return &out
}
