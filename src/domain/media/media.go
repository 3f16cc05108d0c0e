package media

import (
	"context"
	"time"
)

type Media struct {
	ID           int
	RestaurantID int
	CustomerID   *int
	StoragePath  string
	MimeType     string
	SizeBytes    int64
	UploadedBy   string
	CreatedAt    time.Time
}

type IMediaService interface {
	Create(ctx context.Context, m *Media) (*Media, error)
	GetByID(ctx context.Context, restaurantID, id int) (*Media, error)
}
