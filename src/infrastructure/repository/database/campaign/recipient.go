package campaign

import (
	"time"

	domainCampaign "restaurant-crm-api/src/domain/campaign"
)

// Recipient is the database model for one customer's delivery state within a campaign.
type Recipient struct {
	ID           int        `gorm:"primaryKey"`
	CampaignID   int        `gorm:"column:scheduled_message_id;not null;uniqueIndex:idx_recipient_campaign_customer,priority:1"`
	CustomerID   int        `gorm:"column:customer_id;not null;uniqueIndex:idx_recipient_campaign_customer,priority:2"`
	Status       string     `gorm:"column:status;not null;index"`
	RetryCount   int        `gorm:"column:retry_count;not null"`
	Permanent    bool       `gorm:"column:permanent;not null"`
	LastRetryAt  *time.Time `gorm:"column:last_retry_at"`
	ErrorMessage string     `gorm:"column:error_message;type:text"`
	SentAt       *time.Time `gorm:"column:sent_at"`
	Version      int        `gorm:"column:version;not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Recipient) TableName() string {
	return "scheduled_message_recipients"
}

func (r *Recipient) toDomainMapper() *domainCampaign.Recipient {
	return &domainCampaign.Recipient{
		ID:           r.ID,
		CampaignID:   r.CampaignID,
		CustomerID:   r.CustomerID,
		Status:       domainCampaign.RecipientStatus(r.Status),
		RetryCount:   r.RetryCount,
		Permanent:    r.Permanent,
		LastRetryAt:  r.LastRetryAt,
		ErrorMessage: r.ErrorMessage,
		SentAt:       r.SentAt,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func recipientArrayToDomainMapper(models *[]Recipient) *[]domainCampaign.Recipient {
	out := make([]domainCampaign.Recipient, len(*models))
	for i, model := range *models {
		out[i] = *model.toDomainMapper()
	}
	return &out
}
