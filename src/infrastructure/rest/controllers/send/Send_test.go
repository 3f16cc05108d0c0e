package send

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-crm-api/src/application/usecases/message"
	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMessage "restaurant-crm-api/src/domain/message"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockMessageUseCase implements message.IMessageUseCase for testing
type MockMessageUseCase struct {
	sendMessageFunc func(*message.MessageRequest) (*message.MessageResponse, error)
	historyFunc     func(restaurantID, customerID, limit int) (*[]domainMessage.Log, error)
}

func (m *MockMessageUseCase) SendMessage(_ context.Context, req *message.MessageRequest) (*message.MessageResponse, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(req)
	}
	return nil, nil
}

func (m *MockMessageUseCase) History(_ context.Context, restaurantID, customerID, limit int) (*[]domainMessage.Log, error) {
	if m.historyFunc != nil {
		return m.historyFunc(restaurantID, customerID, limit)
	}
	return &[]domainMessage.Log{}, nil
}

// MockCommonService mocks the common service for testing
type MockCommonService struct {
	appendValidationErrorsFunc func(*gin.Context, validator.ValidationErrors, interface{})
}

func (m *MockCommonService) AppendValidationErrors(ctx *gin.Context, ve validator.ValidationErrors, intr interface{}) {
	if m.appendValidationErrorsFunc != nil {
		m.appendValidationErrorsFunc(ctx, ve, intr)
		return
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": len(ve)})
}

func setupRouter(controller ISendController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set(middlewares.ContextRestaurantID, 7)
		c.Next()
	})
	router.POST("/send/message", controller.Message)
	router.GET("/send/messages", controller.History)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendController_Message_Success(t *testing.T) {
	var got *message.MessageRequest
	mockMessageUseCase := &MockMessageUseCase{
		sendMessageFunc: func(req *message.MessageRequest) (*message.MessageResponse, error) {
			got = req
			return &message.MessageResponse{Status: domainMessage.StatusSent, MessageID: "wamid-1", LogID: 9}, nil
		},
	}
	router := setupRouter(NewSendController(&MockCommonService{}, mockMessageUseCase, logger.NewNopLogger()))

	w := postJSON(router, "/send/message", gin.H{"customer_id": 3, "message": "Hi!", "template_name": "promo"})

	assert.Equal(t, http.StatusOK, w.Code)
	var response MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "sent", response.Status)
	assert.Equal(t, "wamid-1", response.MessageID)
	assert.Equal(t, 9, response.LogID)
	assert.Equal(t, 7, got.RestaurantID)
	assert.Equal(t, 3, got.CustomerID)
	assert.Equal(t, "promo", got.TemplateName)
}

func TestSendController_Message_ValidationError(t *testing.T) {
	called := false
	mockMessageUseCase := &MockMessageUseCase{
		sendMessageFunc: func(*message.MessageRequest) (*message.MessageResponse, error) {
			called = true
			return nil, nil
		},
	}
	router := setupRouter(NewSendController(&MockCommonService{}, mockMessageUseCase, logger.NewNopLogger()))

	w := postJSON(router, "/send/message", gin.H{"message": "no customer"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestSendController_Message_ChannelError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"transient", domainErrors.NewAppErrorWithType(domainErrors.ChannelTransient), http.StatusBadGateway},
		{"rejected", domainErrors.NewAppErrorWithType(domainErrors.ChannelNonRecoverable), http.StatusBadGateway},
		{"unknown customer", domainErrors.NewAppErrorWithType(domainErrors.NotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMessageUseCase := &MockMessageUseCase{
				sendMessageFunc: func(*message.MessageRequest) (*message.MessageResponse, error) {
					return nil, tt.err
				},
			}
			router := setupRouter(NewSendController(&MockCommonService{}, mockMessageUseCase, logger.NewNopLogger()))
			w := postJSON(router, "/send/message", gin.H{"customer_id": 3, "message": "Hi!"})
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSendController_History(t *testing.T) {
	campaignID := 4
	sentAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockMessageUseCase := &MockMessageUseCase{
		historyFunc: func(restaurantID, customerID, limit int) (*[]domainMessage.Log, error) {
			assert.Equal(t, 7, restaurantID)
			assert.Equal(t, 3, customerID)
			assert.Equal(t, 10, limit)
			return &[]domainMessage.Log{{
				ID: 1, CustomerID: 3, RestaurantID: 7, CampaignID: &campaignID, Body: "Hi!",
				Status: domainMessage.StatusSent, Via: domainMessage.ViaEvolution, SentAt: sentAt,
			}}, nil
		},
	}
	router := setupRouter(NewSendController(&MockCommonService{}, mockMessageUseCase, logger.NewNopLogger()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/send/messages?customer_id=3&limit=10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []MessageLogResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2026-03-01T12:00:00Z", body.Data[0].SentAt)
	assert.Equal(t, 4, *body.Data[0].CampaignID)
	assert.Equal(t, "evolution", body.Data[0].Via)
}

func TestSendController_History_MissingCustomer(t *testing.T) {
	router := setupRouter(NewSendController(&MockCommonService{}, &MockMessageUseCase{}, logger.NewNopLogger()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/send/messages", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
