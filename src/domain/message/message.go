package message

import (
	"context"
	"time"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// ViaEvolution tags log entries delivered through the Evolution WhatsApp gateway.
const ViaEvolution = "evolution"

// Log is an append-only record of one physical send attempt.
type Log struct {
	ID               int
	CustomerID       int
	RestaurantID     int
	CampaignID       *int
	TemplateName     string
	Body             string
	MediaURL         string
	Status           Status
	Via              string
	GatewayMessageID string
	ErrorMessage     string
	SentAt           time.Time
}

type IMessageLogService interface {
	Create(ctx context.Context, entry *Log) (*Log, error)
	ListByCustomer(ctx context.Context, restaurantID, customerID int, limit int) (*[]Log, error)
	ListByCampaign(ctx context.Context, campaignID int) (*[]Log, error)
}
