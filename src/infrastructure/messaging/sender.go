package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-crm-api/src/domain/channel"
	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMessage "restaurant-crm-api/src/domain/message"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// SendRequest is one message to one customer, from a campaign or an ad-hoc send.
type SendRequest struct {
	RestaurantID int
	CustomerID   int
	CampaignID   *int
	TemplateName string
	Body         string
	MediaURL     string
}

type SendResult struct {
	Receipt *channel.Receipt
	Log     *domainMessage.Log
	// Attempted is true when the gateway was actually called.
	Attempted bool
}

// ChannelSenderInterface is the single send path shared by the campaign
// processor and the send-now endpoint. Channel failures are returned as
// *channel.Error; any other error is a store failure.
type ChannelSenderInterface interface {
	Send(ctx context.Context, req *SendRequest) (*SendResult, error)
}

type ChannelSender struct {
	gateway         channel.Gateway
	customers       domainCustomer.ICustomerService
	restaurants     domainRestaurant.IRestaurantService
	messageLog      domainMessage.IMessageLogService
	defaultInstance string
	now             func() time.Time
	Logger          *logger.Logger
}

func NewChannelSender(
	gateway channel.Gateway,
	customers domainCustomer.ICustomerService,
	restaurants domainRestaurant.IRestaurantService,
	messageLog domainMessage.IMessageLogService,
	defaultInstance string,
	loggerInstance *logger.Logger,
) *ChannelSender {
	return &ChannelSender{
		gateway:         gateway,
		customers:       customers,
		restaurants:     restaurants,
		messageLog:      messageLog,
		defaultInstance: defaultInstance,
		now:             func() time.Time { return time.Now().UTC() },
		Logger:          loggerInstance,
	}
}

func (s *ChannelSender) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	result := &SendResult{}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if domainErrors.IsType(err, domainErrors.NotFound) {
			return result, channel.NewNonRecoverableError(0, fmt.Sprintf("customer %d not found", req.CustomerID), err)
		}
		return result, err
	}
	if customer.RestaurantID != req.RestaurantID {
		return result, channel.NewNonRecoverableError(0, fmt.Sprintf("customer %d not found", req.CustomerID), nil)
	}
	phone := channel.NormalizePhone(customer.Phone)
	if phone == "" {
		return result, channel.NewNonRecoverableError(0, "customer has no valid phone number", nil)
	}

	instance, err := s.instanceFor(ctx, req.RestaurantID)
	if err != nil {
		return result, err
	}

	receipt, sendErr := s.gateway.SendText(ctx, &channel.OutboundMessage{
		Instance: instance,
		Phone:    phone,
		Text:     req.Body,
		MediaURL: req.MediaURL,
	})
	result.Attempted = true
	result.Receipt = receipt
	if sendErr != nil {
		var chErr *channel.Error
		if !errors.As(sendErr, &chErr) {
			sendErr = &channel.Error{Category: channel.Classify(sendErr), Message: sendErr.Error(), Err: sendErr}
		}
	}

	result.Log = s.record(ctx, req, receipt, sendErr)
	return result, sendErr
}

func (s *ChannelSender) instanceFor(ctx context.Context, restaurantID int) (string, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if domainErrors.IsType(err, domainErrors.NotFound) {
			return s.defaultInstance, nil
		}
		return "", err
	}
	if restaurant.EvolutionInstanceName != "" {
		return restaurant.EvolutionInstanceName, nil
	}
	return s.defaultInstance, nil
}

// record appends the audit entry and bumps engagement. Both are best effort:
// the send already happened and must not be reported as failed because of them.
func (s *ChannelSender) record(ctx context.Context, req *SendRequest, receipt *channel.Receipt, sendErr error) *domainMessage.Log {
	entry := &domainMessage.Log{
		CustomerID:   req.CustomerID,
		RestaurantID: req.RestaurantID,
		CampaignID:   req.CampaignID,
		TemplateName: req.TemplateName,
		Body:         req.Body,
		MediaURL:     req.MediaURL,
		Status:       domainMessage.StatusSent,
		Via:          domainMessage.ViaEvolution,
		SentAt:       s.now(),
	}
	if receipt != nil {
		entry.GatewayMessageID = receipt.MessageID
	}
	if sendErr != nil {
		entry.Status = domainMessage.StatusFailed
		entry.ErrorMessage = sendErr.Error()
	}

	saved, err := s.messageLog.Create(ctx, entry)
	if err != nil {
		s.Logger.Warn("Could not append message log entry", zap.Error(err),
			zap.Int("customerID", req.CustomerID), zap.String("status", string(entry.Status)))
		saved = nil
	}
	if err := s.customers.IncrementMessagesSent(ctx, req.CustomerID, req.RestaurantID); err != nil {
		s.Logger.Warn("Could not update engagement metrics", zap.Error(err), zap.Int("customerID", req.CustomerID))
	}
	return saved
}
