package customer

import (
	"context"
	"time"
)

type Customer struct {
	ID           int
	RestaurantID int
	Name         string
	Phone        string
	Birthday     *time.Time
	LastOrder    *time.Time
	TotalOrders  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveSince reports whether the customer ordered at or after the given instant.
func (c *Customer) ActiveSince(since time.Time) bool {
	return c.LastOrder != nil && !c.LastOrder.Before(since)
}

// EngagementMetrics aggregates outbound activity per customer and restaurant.
type EngagementMetrics struct {
	ID               int
	CustomerID       int
	RestaurantID     int
	MessagesSent     int
	MessagesOpened   int
	OrdersAfterPromo int
	Score            float64
	LastComputed     time.Time
}

type ICustomerService interface {
	GetByID(ctx context.Context, id int) (*Customer, error)
	ListByRestaurant(ctx context.Context, restaurantID int) (*[]Customer, error)
	IncrementMessagesSent(ctx context.Context, customerID, restaurantID int) error
	GetEngagement(ctx context.Context, customerID, restaurantID int) (*EngagementMetrics, error)
}
