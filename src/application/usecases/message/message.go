package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-crm-api/src/domain/channel"
	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMessage "restaurant-crm-api/src/domain/message"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/messaging"

	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// MessageRequest represents an operator's send-now action
type MessageRequest struct {
	RestaurantID int
	CustomerID   int
	Message      string
	MediaURL     string
	TemplateName string
}

// MessageResponse represents the response from sending a message
type MessageResponse struct {
	Status    domainMessage.Status
	MessageID string
	LogID     int
}

// IMessageUseCase defines the interface for message use cases
type IMessageUseCase interface {
	SendMessage(ctx context.Context, request *MessageRequest) (*MessageResponse, error)
	History(ctx context.Context, restaurantID, customerID, limit int) (*[]domainMessage.Log, error)
}

// MessageUseCase implements the IMessageUseCase interface
type MessageUseCase struct {
	sender     messaging.ChannelSenderInterface
	messageLog domainMessage.IMessageLogService
	Logger     *logger.Logger
}

// NewMessageUseCase creates a new MessageUseCase
func NewMessageUseCase(
	sender messaging.ChannelSenderInterface,
	messageLog domainMessage.IMessageLogService,
	loggerInstance *logger.Logger,
) IMessageUseCase {
	return &MessageUseCase{
		sender:     sender,
		messageLog: messageLog,
		Logger:     loggerInstance,
	}
}

// SendMessage delivers one message synchronously through the shared channel sender.
func (m *MessageUseCase) SendMessage(ctx context.Context, request *MessageRequest) (*MessageResponse, error) {
	if strings.TrimSpace(request.Message) == "" {
		return nil, domainErrors.NewAppError(errors.New("message is required"), domainErrors.ValidationError)
	}

	result, err := m.sender.Send(ctx, &messaging.SendRequest{
		RestaurantID: request.RestaurantID,
		CustomerID:   request.CustomerID,
		TemplateName: request.TemplateName,
		Body:         request.Message,
		MediaURL:     request.MediaURL,
	})
	if err != nil {
		var chErr *channel.Error
		if !errors.As(err, &chErr) {
			m.Logger.Error("Error sending message", zap.Error(err), zap.Int("customerID", request.CustomerID))
			return nil, err
		}
		m.Logger.Warn("Message rejected by channel", zap.Error(err),
			zap.Int("customerID", request.CustomerID), zap.String("category", string(chErr.Category)))
		errType := domainErrors.ChannelNonRecoverable
		if chErr.Category == channel.CategoryTransient {
			errType = domainErrors.ChannelTransient
		}
		return nil, domainErrors.NewAppError(fmt.Errorf("%s", chErr.Message), errType)
	}

	response := &MessageResponse{Status: domainMessage.StatusSent}
	if result.Receipt != nil {
		response.MessageID = result.Receipt.MessageID
	}
	if result.Log != nil {
		response.LogID = result.Log.ID
	}
	m.Logger.Info("Message sent successfully",
		zap.Int("restaurantID", request.RestaurantID),
		zap.Int("customerID", request.CustomerID),
		zap.String("messageID", response.MessageID))
	return response, nil
}

func (m *MessageUseCase) History(ctx context.Context, restaurantID, customerID, limit int) (*[]domainMessage.Log, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return m.messageLog.ListByCustomer(ctx, restaurantID, customerID, limit)
}
