package interfaces

import (
	"context"

	"halador/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripFilter narrows the open-trip listing. Zero value lists everything
// bookable.
type TripFilter struct {
	FromCity string
}

type TripRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Trip, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Listing
	ListOpen(ctx context.Context, filter TripFilter, fromDate string) ([]*models.TripWithDriver, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error)
	ListCompletedByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error)

	// Status operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error

	// DeleteCascade removes the trip and every request referencing it in
	// one transaction.
	DeleteCascade(ctx context.Context, id primitive.ObjectID) error
}
