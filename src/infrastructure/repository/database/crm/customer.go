package crm

import (
	"context"
	"errors"
	"time"

	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Customer struct {
	ID           int        `gorm:"primaryKey"`
	RestaurantID int        `gorm:"column:restaurant_id;index;not null"`
	Name         string     `gorm:"column:name;not null"`
	Phone        string     `gorm:"column:phone;index"`
	Birthday     *time.Time `gorm:"column:birthday;type:date"`
	LastOrder    *time.Time `gorm:"column:last_order"`
	TotalOrders  int        `gorm:"column:total_orders;not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}

type EngagementMetric struct {
	ID               int       `gorm:"primaryKey"`
	CustomerID       int       `gorm:"column:customer_id;not null;uniqueIndex:idx_engagement_customer_restaurant,priority:1"`
	RestaurantID     int       `gorm:"column:restaurant_id;not null;uniqueIndex:idx_engagement_customer_restaurant,priority:2"`
	MessagesSent     int       `gorm:"column:messages_sent;not null"`
	MessagesOpened   int       `gorm:"column:messages_opened;not null"`
	OrdersAfterPromo int       `gorm:"column:orders_after_promo;not null"`
	Score            float64   `gorm:"column:score;not null"`
	LastComputed     time.Time `gorm:"column:last_computed"`
}

func (EngagementMetric) TableName() string {
	return "engagement_metrics"
}

type CustomerRepositoryInterface interface {
	domainCustomer.ICustomerService
	Create(ctx context.Context, customer *domainCustomer.Customer) (*domainCustomer.Customer, error)
}

type CustomerRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewCustomerRepository(db *gorm.DB, loggerInstance *logger.Logger) CustomerRepositoryInterface {
	return &CustomerRepository{DB: db, Logger: loggerInstance}
}

func (r *CustomerRepository) Create(ctx context.Context, customerDomain *domainCustomer.Customer) (*domainCustomer.Customer, error) {
	model := customerFromDomainMapper(customerDomain)
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		r.Logger.Error("Error creating customer", zap.Error(err), zap.Int("restaurantID", customerDomain.RestaurantID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*domainCustomer.Customer, error) {
	var model Customer
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.Logger.Warn("Customer not found", zap.Int("customerID", id))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting customer", zap.Error(err), zap.Int("customerID", id))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}

func (r *CustomerRepository) ListByRestaurant(ctx context.Context, restaurantID int) (*[]domainCustomer.Customer, error) {
	var models []Customer
	if err := r.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("id ASC").Find(&models).Error; err != nil {
		r.Logger.Error("Error listing customers", zap.Error(err), zap.Int("restaurantID", restaurantID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	out := make([]domainCustomer.Customer, len(models))
	for i, model := range models {
		out[i] = *model.toDomainMapper()
	}
	return &out, nil
}

// IncrementMessagesSent upserts the engagement row and bumps messages_sent by one.
func (r *CustomerRepository) IncrementMessagesSent(ctx context.Context, customerID, restaurantID int) error {
	now := time.Now().UTC()
	metric := EngagementMetric{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		MessagesSent: 1,
		LastComputed: now,
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "restaurant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"messages_sent": gorm.Expr("engagement_metrics.messages_sent + 1"),
			"last_computed": now,
		}),
	}).Create(&metric).Error
	if err != nil {
		r.Logger.Error("Error updating engagement metrics", zap.Error(err), zap.Int("customerID", customerID))
		return domainErrors.NewAppError(err, domainErrors.StoreWriteError)
	}
	return nil
}

func (r *CustomerRepository) GetEngagement(ctx context.Context, customerID, restaurantID int) (*domainCustomer.EngagementMetrics, error) {
	var model EngagementMetric
	err := r.DB.WithContext(ctx).Where("customer_id = ? AND restaurant_id = ?", customerID, restaurantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting engagement metrics", zap.Error(err), zap.Int("customerID", customerID))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return &domainCustomer.EngagementMetrics{
		ID:               model.ID,
		CustomerID:       model.CustomerID,
		RestaurantID:     model.RestaurantID,
		MessagesSent:     model.MessagesSent,
		MessagesOpened:   model.MessagesOpened,
		OrdersAfterPromo: model.OrdersAfterPromo,
		Score:            model.Score,
		LastComputed:     model.LastComputed,
	}, nil
}

func (c *Customer) toDomainMapper() *domainCustomer.Customer {
	return &domainCustomer.Customer{
		ID:           c.ID,
		RestaurantID: c.RestaurantID,
		Name:         c.Name,
		Phone:        c.Phone,
		Birthday:     c.Birthday,
		LastOrder:    c.LastOrder,
		TotalOrders:  c.TotalOrders,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func customerFromDomainMapper(c *domainCustomer.Customer) *Customer {
	return &Customer{
		ID:           c.ID,
		RestaurantID: c.RestaurantID,
		Name:         c.Name,
		Phone:        c.Phone,
		Birthday:     c.Birthday,
		LastOrder:    c.LastOrder,
		TotalOrders:  c.TotalOrders,
	}
}
