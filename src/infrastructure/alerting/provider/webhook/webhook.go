package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"restaurant-crm-api/src/infrastructure/alerting/alert"

	"github.com/tidwall/sjson"
)

var ErrWebhookURLNotSet = errors.New("webhook-url not set")

// AlertProvider is the configuration necessary for posting alerts to a JSON webhook
type AlertProvider struct {
	WebhookURL string `yaml:"webhook-url"`

	// DefaultAlert is the default alert configuration to use for campaigns with an alert of the appropriate type
	DefaultAlert *alert.Alert `yaml:"default-alert,omitempty"`

	// Timeout bounds a single delivery, 10s when unset
	Timeout time.Duration `yaml:"-"`

	clientOnce sync.Once
	client     *http.Client
}

// Validate the provider's configuration
func (provider *AlertProvider) Validate() error {
	if provider.WebhookURL == "" {
		return ErrWebhookURLNotSet
	}
	return nil
}

func (provider *AlertProvider) httpClient() *http.Client {
	provider.clientOnce.Do(func() {
		timeout := provider.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		provider.client = &http.Client{Timeout: timeout}
	})
	return provider.client
}

// Send an alert using the provider
func (provider *AlertProvider) Send(ctx context.Context, a *alert.Alert, event *alert.CampaignEvent) error {
	body, err := provider.buildRequestBody(a, event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "restaurant-crm-api-Webhook")

	resp, err := provider.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode > 399 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("call to provider alert returned status code %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (provider *AlertProvider) buildRequestBody(a *alert.Alert, event *alert.CampaignEvent) ([]byte, error) {
	fields := []struct {
		path  string
		value interface{}
	}{
		{"type", "campaign_completed"},
		{"campaign_id", event.CampaignID},
		{"restaurant_id", event.RestaurantID},
		{"total", event.Total},
		{"sent", event.Sent},
		{"failed", event.Failed},
		{"completed_at", event.CompletedAt.UTC().Format(time.RFC3339)},
	}
	body := []byte(`{}`)
	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	if description := a.GetDescription(); description != "" {
		if body, err = sjson.SetBytes(body, "description", description); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// GetDefaultAlert returns the provider's default alert configuration
func (provider *AlertProvider) GetDefaultAlert() *alert.Alert {
	return provider.DefaultAlert
}
