package campaign

import (
	"time"

	domainCampaign "restaurant-crm-api/src/domain/campaign"
)

type AudienceRequest struct {
	Filter      string `json:"filter" binding:"omitempty,oneof=all recently-active inactive explicit"`
	CustomerIDs []int  `json:"customer_ids" binding:"omitempty,dive,gt=0"`
}

type CreateCampaignRequest struct {
	Message       string          `json:"message" binding:"required,max=4096"`
	MediaURL      string          `json:"media_url" binding:"omitempty,url"`
	TemplateName  string          `json:"template_name" binding:"max=100"`
	ScheduledDate string          `json:"scheduled_date" binding:"omitempty,datetime=2006-01-02"`
	ScheduledTime string          `json:"scheduled_time"`
	ScheduledAt   string          `json:"scheduled_at"`
	Timezone      string          `json:"timezone"`
	DelaySeconds  *int            `json:"delay_seconds" binding:"omitempty,gte=0,lte=3600"`
	Audience      AudienceRequest `json:"audience"`
}

type ListRequest struct {
	Page     int `form:"page" binding:"omitempty,gte=1"`
	PageSize int `form:"page_size" binding:"omitempty,gte=1"`
}

type IDRequest struct {
	ID int `uri:"id" binding:"required,gt=0"`
}

type CampaignResponse struct {
	ID              int        `json:"id"`
	Message         string     `json:"message"`
	MediaURL        string     `json:"media_url,omitempty"`
	TemplateName    string     `json:"template_name,omitempty"`
	ScheduledFor    time.Time  `json:"scheduled_for"`
	DelaySeconds    int        `json:"delay_seconds"`
	Status          string     `json:"status"`
	TotalRecipients int        `json:"total_recipients"`
	SentCount       int        `json:"sent_count"`
	FailedCount     int        `json:"failed_count"`
	PendingCount    int        `json:"pending_count"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type PaginatedCampaigns struct {
	Data       []CampaignResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type RecipientResponse struct {
	ID           int        `json:"id"`
	CustomerID   int        `json:"customer_id"`
	Status       string     `json:"status"`
	RetryCount   int        `json:"retry_count"`
	Permanent    bool       `json:"permanent"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
}

func domainToResponseMapper(c *domainCampaign.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:              c.ID,
		Message:         c.Message,
		MediaURL:        c.MediaURL,
		TemplateName:    c.TemplateName,
		ScheduledFor:    c.ScheduledFor,
		DelaySeconds:    c.DelaySeconds,
		Status:          string(c.Status),
		TotalRecipients: c.TotalRecipients,
		SentCount:       c.SentCount,
		FailedCount:     c.FailedCount,
		PendingCount:    c.Pending(),
		CreatedBy:       c.CreatedBy,
		CompletedAt:     c.CompletedAt,
		CreatedAt:       c.CreatedAt,
	}
}

func recipientToResponseMapper(r *domainCampaign.Recipient) RecipientResponse {
	return RecipientResponse{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		Status:       string(r.Status),
		RetryCount:   r.RetryCount,
		Permanent:    r.IsPermanentlyFailed(),
		LastRetryAt:  r.LastRetryAt,
		ErrorMessage: r.ErrorMessage,
		SentAt:       r.SentAt,
	}
}
