package alerting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	domainCampaign "restaurant-crm-api/src/domain/campaign"
	"restaurant-crm-api/src/infrastructure/alerting/alert"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type capture struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, body)
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func completedCampaign(failed int) *domainCampaign.Campaign {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domainCampaign.Campaign{
		ID:              9,
		RestaurantID:    2,
		TotalRecipients: 5,
		SentCount:       5 - failed,
		FailedCount:     failed,
		Status:          domainCampaign.StatusCompleted,
		CompletedAt:     &at,
	}
}

func TestCampaignCompletedPostsWhenThresholdReached(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(http.HandlerFunc(c.handler))
	defer server.Close()

	notifier := NewCampaignNotifier(NewWebhookConfig(server.URL, 2), logger.NewNopLogger())
	notifier.CampaignCompleted(context.Background(), completedCampaign(1))
	notifier.CampaignCompleted(context.Background(), completedCampaign(3))

	require.Len(t, c.bodies, 1)
	body := c.bodies[0]
	assert.Equal(t, "campaign_completed", gjson.GetBytes(body, "type").String())
	assert.Equal(t, int64(9), gjson.GetBytes(body, "campaign_id").Int())
	assert.Equal(t, int64(3), gjson.GetBytes(body, "failed").Int())
	assert.Equal(t, "2026-03-01T12:00:00Z", gjson.GetBytes(body, "completed_at").String())
}

func TestCampaignCompletedToleratesFailingWebhook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewCampaignNotifier(NewWebhookConfig(server.URL, 1), logger.NewNopLogger())
	assert.NotPanics(t, func() {
		notifier.CampaignCompleted(context.Background(), completedCampaign(2))
	})
}

func TestNoProvidersConfigured(t *testing.T) {
	config := NewWebhookConfig("", 1)
	assert.Nil(t, config.GetAlertingProviderByAlertType(alert.TypeWebhook))
	NewCampaignNotifier(config, logger.NewNopLogger()).CampaignCompleted(context.Background(), completedCampaign(5))
}

func TestAlertShouldTrigger(t *testing.T) {
	disabled := false
	tests := []struct {
		name   string
		alert  alert.Alert
		failed int
		want   bool
	}{
		{"default threshold", alert.Alert{}, 1, true},
		{"no failures", alert.Alert{}, 0, false},
		{"below custom threshold", alert.Alert{MinFailed: 3}, 2, false},
		{"disabled", alert.Alert{Enabled: &disabled}, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alert.ShouldTrigger(&alert.CampaignEvent{Failed: tt.failed}))
		})
	}
}

func TestCampaignCompletedHonoursDisabledDefaultAlert(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(http.HandlerFunc(c.handler))
	defer server.Close()

	disabled := false
	cfg := NewWebhookConfig(server.URL, 1)
	cfg.Webhook.DefaultAlert.Enabled = &disabled

	NewCampaignNotifier(cfg, logger.NewNopLogger()).CampaignCompleted(context.Background(), completedCampaign(4))
	assert.Empty(t, c.bodies)
}
