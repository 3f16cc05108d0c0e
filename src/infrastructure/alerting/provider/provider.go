package provider

import (
	"context"

	"restaurant-crm-api/src/infrastructure/alerting/alert"
	"restaurant-crm-api/src/infrastructure/alerting/provider/webhook"
)

// AlertProvider is the interface that each provider should implement
type AlertProvider interface {
	// Validate the provider's configuration
	Validate() error

	// Send an alert using the provider
	Send(ctx context.Context, alert *alert.Alert, event *alert.CampaignEvent) error

	// GetDefaultAlert returns the provider's default alert configuration
	GetDefaultAlert() *alert.Alert
}

// MergeProviderDefaultAlertIntoAlert fills unset fields of a specific alert from the provider's default
func MergeProviderDefaultAlertIntoAlert(providerDefaultAlert, target *alert.Alert) {
	if providerDefaultAlert == nil || target == nil {
		return
	}
	if target.Enabled == nil {
		target.Enabled = providerDefaultAlert.Enabled
	}
	if target.Description == nil {
		target.Description = providerDefaultAlert.Description
	}
	if target.MinFailed == 0 {
		target.MinFailed = providerDefaultAlert.MinFailed
	}
}

var (
	// Validate provider interface implementation on compile
	_ AlertProvider = (*webhook.AlertProvider)(nil)
)
