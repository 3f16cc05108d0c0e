package restaurant

import (
	"context"
	"time"
)

type Restaurant struct {
	ID                    int
	Name                  string
	OwnerID               string
	WhatsAppNumber        string
	EvolutionInstanceName string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type IRestaurantService interface {
	GetByID(ctx context.Context, id int) (*Restaurant, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*Restaurant, error)
}
