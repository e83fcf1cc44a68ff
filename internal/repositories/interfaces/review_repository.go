package interfaces

import (
	"context"

	"halador/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Exists(ctx context.Context, tripID, reviewerID primitive.ObjectID) (bool, error)
	ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error)
	ListTripIDsByReviewer(ctx context.Context, reviewerID primitive.ObjectID) ([]primitive.ObjectID, error)

	// Summarize recomputes the reviewee's aggregate from all stored
	// reviews. The caller writes the result onto the profile.
	Summarize(ctx context.Context, revieweeID primitive.ObjectID) (*models.RatingSummary, error)
}
