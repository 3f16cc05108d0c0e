package restaurant

import (
	"context"
	"errors"
	"strings"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

type IRestaurantUseCase interface {
	GetByOwnerID(ctx context.Context, ownerID string) (*domainRestaurant.Restaurant, error)
	QRCode(ctx context.Context, restaurantID, size int) ([]byte, error)
}

type RestaurantUseCase struct {
	repo   domainRestaurant.IRestaurantService
	Logger *logger.Logger
}

func NewRestaurantUseCase(repo domainRestaurant.IRestaurantService, loggerInstance *logger.Logger) IRestaurantUseCase {
	return &RestaurantUseCase{repo: repo, Logger: loggerInstance}
}

func (r *RestaurantUseCase) GetByOwnerID(ctx context.Context, ownerID string) (*domainRestaurant.Restaurant, error) {
	return r.repo.GetByOwnerID(ctx, ownerID)
}

// ChatLink is the click-to-chat URL for a WhatsApp number; empty when the number has no digits.
func ChatLink(number string) string {
	var b strings.Builder
	for _, ch := range number {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "https://wa.me/" + b.String()
}

// QRCode renders the restaurant's click-to-chat link as a PNG.
func (r *RestaurantUseCase) QRCode(ctx context.Context, restaurantID, size int) ([]byte, error) {
	rest, err := r.repo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	link := ChatLink(rest.WhatsAppNumber)
	if link == "" {
		return nil, domainErrors.NewAppError(errors.New("restaurant has no WhatsApp number"), domainErrors.NotFound)
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if size < MinQRSize || size > MaxQRSize {
		return nil, domainErrors.NewAppError(errors.New("size must be between 64 and 1024"), domainErrors.ValidationError)
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		r.Logger.Error("Error encoding QR code", zap.Error(err), zap.Int("restaurantID", restaurantID))
		return nil, err
	}
	return png, nil
}
