package crm

import (
	"context"
	"errors"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID                    int       `gorm:"primaryKey"`
	Name                  string    `gorm:"column:name;not null"`
	OwnerID               string    `gorm:"column:owner_id;uniqueIndex"`
	WhatsAppNumber        string    `gorm:"column:whatsapp_number"`
	EvolutionInstanceName string    `gorm:"column:evolution_instance_name"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

type RestaurantRepositoryInterface interface {
	domainRestaurant.IRestaurantService
	Create(ctx context.Context, restaurant *domainRestaurant.Restaurant) (*domainRestaurant.Restaurant, error)
}

type RestaurantRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewRestaurantRepository(db *gorm.DB, loggerInstance *logger.Logger) RestaurantRepositoryInterface {
	return &RestaurantRepository{DB: db, Logger: loggerInstance}
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurantDomain *domainRestaurant.Restaurant) (*domainRestaurant.Restaurant, error) {
	model := &Restaurant{
		Name:                  restaurantDomain.Name,
		OwnerID:               restaurantDomain.OwnerID,
		WhatsAppNumber:        restaurantDomain.WhatsAppNumber,
		EvolutionInstanceName: restaurantDomain.EvolutionInstanceName,
	}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		r.Logger.Error("Error creating restaurant", zap.Error(err), zap.String("ownerID", restaurantDomain.OwnerID))
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.ResourceAlreadyExists)
		}
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id int) (*domainRestaurant.Restaurant, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *RestaurantRepository) GetByOwnerID(ctx context.Context, ownerID string) (*domainRestaurant.Restaurant, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

func (r *RestaurantRepository) first(ctx context.Context, query string, arg interface{}) (*domainRestaurant.Restaurant, error) {
	var model Restaurant
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.Logger.Warn("Restaurant not found", zap.Any("key", arg))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting restaurant", zap.Error(err), zap.Any("key", arg))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (r *Restaurant) toDomainMapper() *domainRestaurant.Restaurant {
	return &domainRestaurant.Restaurant{
		ID:                    r.ID,
		Name:                  r.Name,
		OwnerID:               r.OwnerID,
		WhatsAppNumber:        r.WhatsAppNumber,
		EvolutionInstanceName: r.EvolutionInstanceName,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
