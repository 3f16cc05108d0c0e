package alert

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrAlertWithInvalidDescription is returned when an alert description has an invalid character
	ErrAlertWithInvalidDescription = errors.New("alert description must not have \" or \\")
)

// Alert is the per-provider alert configuration
type Alert struct {
	Type Type `yaml:"type"`

	Enabled *bool `yaml:"enabled,omitempty"`

	Description *string `yaml:"description,omitempty"`

	// MinFailed is the smallest failed_count on a completed campaign that triggers the alert
	MinFailed int `yaml:"min-failed,omitempty"`
}

// CampaignEvent is what gets reported when a campaign finishes.
type CampaignEvent struct {
	CampaignID   int
	RestaurantID int
	Total        int
	Sent         int
	Failed       int
	CompletedAt  time.Time
}

// ValidateAndSetDefaults validates the alert's configuration and sets the default value of fields that have one
func (alert *Alert) ValidateAndSetDefaults() error {
	if strings.ContainsAny(alert.GetDescription(), "\"\\") {
		return ErrAlertWithInvalidDescription
	}
	if alert.MinFailed <= 0 {
		alert.MinFailed = 1
	}
	return nil
}

// GetDescription retrieves the description of the alert
func (alert *Alert) GetDescription() string {
	if alert.Description == nil {
		return ""
	}
	return *alert.Description
}

// IsEnabled returns whether an alert is enabled or not
// Returns true if not set
func (alert *Alert) IsEnabled() bool {
	if alert.Enabled == nil {
		return true
	}
	return *alert.Enabled
}

// ShouldTrigger reports whether the event crosses the alert threshold.
func (alert *Alert) ShouldTrigger(event *CampaignEvent) bool {
	if !alert.IsEnabled() {
		return false
	}
	minFailed := alert.MinFailed
	if minFailed <= 0 {
		minFailed = 1
	}
	return event.Failed >= minFailed
}
