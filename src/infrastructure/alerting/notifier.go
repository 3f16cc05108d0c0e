package alerting

import (
	"context"
	"time"

	domainCampaign "restaurant-crm-api/src/domain/campaign"
	"restaurant-crm-api/src/infrastructure/alerting/alert"
	"restaurant-crm-api/src/infrastructure/alerting/provider"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

var alertTypes = []alert.Type{alert.TypeWebhook}

// CampaignNotifier reports completed campaigns with failures to every configured provider.
type CampaignNotifier struct {
	config *Config
	Logger *logger.Logger
}

func NewCampaignNotifier(config *Config, loggerInstance *logger.Logger) *CampaignNotifier {
	n := &CampaignNotifier{config: config, Logger: loggerInstance}
	for _, t := range alertTypes {
		p := config.GetAlertingProviderByAlertType(t)
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			loggerInstance.Warn("Disabling invalid alerting provider", zap.String("type", string(t)), zap.Error(err))
			config.SetAlertingProviderToNil(p)
		}
	}
	return n
}

// CampaignCompleted never fails the caller; delivery problems are logged.
func (n *CampaignNotifier) CampaignCompleted(ctx context.Context, c *domainCampaign.Campaign) {
	event := &alert.CampaignEvent{
		CampaignID:   c.ID,
		RestaurantID: c.RestaurantID,
		Total:        c.TotalRecipients,
		Sent:         c.SentCount,
		Failed:       c.FailedCount,
		CompletedAt:  time.Now().UTC(),
	}
	if c.CompletedAt != nil {
		event.CompletedAt = *c.CompletedAt
	}

	for _, t := range alertTypes {
		p := n.config.GetAlertingProviderByAlertType(t)
		if p == nil {
			continue
		}
		a := &alert.Alert{Type: t}
		provider.MergeProviderDefaultAlertIntoAlert(p.GetDefaultAlert(), a)
		if err := a.ValidateAndSetDefaults(); err != nil {
			n.Logger.Warn("Invalid alert configuration", zap.String("type", string(t)), zap.Error(err))
			continue
		}
		if !a.ShouldTrigger(event) {
			continue
		}
		if err := p.Send(ctx, a, event); err != nil {
			n.Logger.Error("Error sending campaign alert", zap.Error(err),
				zap.String("type", string(t)), zap.Int("campaignID", c.ID))
			continue
		}
		n.Logger.Info("Campaign alert sent", zap.String("type", string(t)),
			zap.Int("campaignID", c.ID), zap.Int("failed", c.FailedCount))
	}
}
