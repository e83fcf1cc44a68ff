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

type profileRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewProfileRepository(db *mongo.Database, cache services.CacheService) interfaces.ProfileRepository {
	return &profileRepository{
		collection: db.Collection("profiles"),
		cache:      cache,
	}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	// The profile id IS the user id; the caller sets it so a lost
	// profile regenerates under the same identity.
	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Duplicate("profile already exists")
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("profile")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("profile")
	}

	return nil
}

// UpdateSubscriptionIf is the gate's compare-and-set: the transition is
// applied only while the profile still sits in the expected state, so a
// double-click approve or a lost admin race cannot re-run a transition.
func (r *profileRepository) UpdateSubscriptionIf(ctx context.Context, id primitive.ObjectID, expected models.SubscriptionStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "subscription_status": expected},
		bson.M{"$set": updates},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update subscription: %w", err)
	}

	return res.MatchedCount > 0, nil
}

func (r *profileRepository) ListBySubscriptionStatus(ctx context.Context, status models.SubscriptionStatus) ([]*models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"subscription_status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []*models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	return profiles, nil
}

func (r *profileRepository) IncrementTripsCompleted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"trips_completed": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment trips completed: %w", err)
	}

	return nil
}

func (r *profileRepository) SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int) error {
	return r.Update(ctx, id, map[string]interface{}{
		"rating_average": average,
		"rating_count":   count,
	})
}
