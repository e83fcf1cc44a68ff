package interfaces

import (
	"context"

	"halador/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// UpdateSubscriptionIf applies the subscription transition only when
	// the current status matches expected; reports whether a row was
	// changed. This is what keeps the gate's state machine honest under
	// concurrent admin actions.
	UpdateSubscriptionIf(ctx context.Context, id primitive.ObjectID, expected models.SubscriptionStatus, updates map[string]interface{}) (bool, error)

	ListBySubscriptionStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Profile, error)
	IncrementTripsCompleted(ctx context.Context, id primitive.ObjectID) error
	SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error
}
