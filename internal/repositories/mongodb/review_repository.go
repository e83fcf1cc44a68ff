package mongodb

import (
	"context"
	"fmt"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewReviewRepository(db *mongo.Database, cache services.CacheService) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection("reviews"),
		cache:      cache,
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		// Backed by the unique (trip_id, reviewer_id) index, so the
		// service-level lookup is a courtesy, not the guard.
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Duplicate("trip already reviewed")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	if r.cache != nil {
		r.cache.Delete(ctx, fmt.Sprintf("avg_rating_%s", review.RevieweeID.Hex()))
	}

	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, tripID, reviewerID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"trip_id":     tripID,
		"reviewer_id": reviewerID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}

	return count > 0, nil
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"reviewee_id": revieweeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) ListTripIDsByReviewer(ctx context.Context, reviewerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"reviewer_id": reviewerID},
		options.Find().SetProjection(bson.M{"trip_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewed trips: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TripID primitive.ObjectID `bson:"trip_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reviewed trips: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TripID)
	}

	return ids, nil
}

func (r *reviewRepository) Summarize(ctx context.Context, revieweeID primitive.ObjectID) (*models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"reviewee_id": revieweeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"avg_rating":   bson.M{"$avg": "$rating"},
			"rating_count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.RatingSummary
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode rating summary: %w", err)
	}
	if len(results) == 0 {
		return &models.RatingSummary{}, nil
	}

	return &results[0], nil
}
