package alerting

import (
	"reflect"
	"strings"

	"restaurant-crm-api/src/infrastructure/alerting/alert"
	"restaurant-crm-api/src/infrastructure/alerting/provider"
	"restaurant-crm-api/src/infrastructure/alerting/provider/webhook"
)

// Config is the configuration for alerting providers
type Config struct {

	// Webhook is the configuration for the JSON webhook alerting provider
	Webhook *webhook.AlertProvider `yaml:"webhook,omitempty"`
}

// NewWebhookConfig builds a Config with only the webhook provider set.
// An empty URL yields a Config with no providers.
func NewWebhookConfig(webhookURL string, minFailed int) *Config {
	if webhookURL == "" {
		return &Config{}
	}
	return &Config{
		Webhook: &webhook.AlertProvider{
			WebhookURL:   webhookURL,
			DefaultAlert: &alert.Alert{Type: alert.TypeWebhook, MinFailed: minFailed},
		},
	}
}

// GetAlertingProviderByAlertType returns an provider.AlertProvider by its corresponding alert.Type
func (config *Config) GetAlertingProviderByAlertType(alertType alert.Type) provider.AlertProvider {
	entityType := reflect.TypeOf(config).Elem()
	for i := 0; i < entityType.NumField(); i++ {
		field := entityType.Field(i)
		tag := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if tag == string(alertType) {
			fieldValue := reflect.ValueOf(config).Elem().Field(i)
			if fieldValue.IsNil() {
				return nil
			}
			return fieldValue.Interface().(provider.AlertProvider)
		}
	}
	return nil
}

// SetAlertingProviderToNil Sets an alerting provider to nil to avoid having to revalidate it every time an
// alert of its corresponding type is sent.
func (config *Config) SetAlertingProviderToNil(p provider.AlertProvider) {
	entityType := reflect.TypeOf(config).Elem()
	for i := 0; i < entityType.NumField(); i++ {
		field := entityType.Field(i)
		if field.Type == reflect.TypeOf(p) {
			reflect.ValueOf(config).Elem().Field(i).Set(reflect.Zero(field.Type))
		}
	}
}
