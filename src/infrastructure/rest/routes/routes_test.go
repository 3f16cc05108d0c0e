package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"restaurant-crm-api/src/domain/channel"
	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	"restaurant-crm-api/src/infrastructure/config"
	"restaurant-crm-api/src/infrastructure/di"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGateway struct {
	mu   sync.Mutex
	sent []channel.OutboundMessage
}

func (g *recordingGateway) SendText(_ context.Context, msg *channel.OutboundMessage) (*channel.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, *msg)
	return &channel.Receipt{MessageID: "wamid", StatusCode: 201}, nil
}

type harness struct {
	router  *gin.Engine
	gateway *recordingGateway
	token   string
	media   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Server.JWTSecret = "secret"
	cfg.Server.SchedulerToken = "cron"
	cfg.Database.Driver = config.DriverMemory
	cfg.Media.Root = t.TempDir()

	repos := di.MemoryRepositories(memory.NewStore())
	ctx := context.Background()
	rest, err := repos.Restaurants.Create(ctx, &domainRestaurant.Restaurant{Name: "Cantina", OwnerID: "owner-1", WhatsAppNumber: "+5511900000000"})
	require.NoError(t, err)
	for _, phone := range []string{"5511900000001", "5511900000002", "5511900000003"} {
		_, err := repos.Customers.Create(ctx, &domainCustomer.Customer{RestaurantID: rest.ID, Name: "C", Phone: phone})
		require.NoError(t, err)
	}

	gateway := &recordingGateway{}
	appContext := di.NewApplicationContext(cfg, repos, gateway, nil, logger.NewNopLogger())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "owner-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	return &harness{router: NewRouter(appContext), gateway: gateway, token: token, media: cfg.Media.Root}
}

func (h *harness) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) auth() map[string]string {
	return map[string]string{"Authorization": "Bearer " + h.token}
}

func TestHealthAndAuthBoundary(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/campaigns", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/scheduler/run", nil, h.auth()).Code)
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/v1/campaigns", gin.H{
		"message":       "Happy hour starts now",
		"scheduled_at":  time.Now().UTC().Format(time.RFC3339),
		"delay_seconds": 0,
		"audience":      gin.H{"filter": "all"},
	}, h.auth())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID              int    `json:"id"`
		Status          string `json:"status"`
		TotalRecipients int    `json:"total_recipients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 3, created.TotalRecipients)

	w = h.do(http.MethodPost, "/v1/scheduler/run", nil, map[string]string{"X-Scheduler-Token": "cron"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"sent":3`)
	assert.Len(t, h.gateway.sent, 3)

	w = h.do(http.MethodGet, "/v1/campaigns/"+itoa(created.ID), nil, h.auth())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	assert.Contains(t, w.Body.String(), `"sent_count":3`)

	w = h.do(http.MethodPost, "/v1/campaigns/"+itoa(created.ID)+"/cancel", nil, h.auth())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/v1/scheduler/run", nil, map[string]string{"X-Scheduler-Token": "cron"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, h.gateway.sent, 3)
}

func TestRestaurantQRCodeAndStaticMedia(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/v1/restaurant/qrcode", nil, h.auth())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	require.NoError(t, os.MkdirAll(filepath.Join(h.media, "1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.media, "1", "menu.txt"), []byte("menu"), 0o644))
	w = h.do(http.MethodGet, "/media/1/menu.txt", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "menu", w.Body.String())
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
