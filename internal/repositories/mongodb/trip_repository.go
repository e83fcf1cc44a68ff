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

const openTripsCacheTTL = 5 * time.Second

type tripRepository struct {
	collection *mongo.Collection
	requests   *mongo.Collection
	cache      services.CacheService
}

func NewTripRepository(db *mongo.Database, cache services.CacheService) interfaces.TripRepository {
	return &tripRepository{
		collection: db.Collection("trips"),
		requests:   db.Collection("trip_requests"),
		cache:      cache,
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	trip.ID = primitive.NewObjectID()
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Duplicate("trip already published for this idempotency key")
		}
		return fmt.Errorf("failed to create trip: %w", err)
	}

	r.invalidateOpenTripsCache(ctx)
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	var trip models.Trip
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("trip")
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

func (r *tripRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Trip, error) {
	var trip models.Trip
	err := r.collection.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("trip")
		}
		return nil, fmt.Errorf("failed to get trip by idempotency key: %w", err)
	}

	return &trip, nil
}

func (r *tripRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}

	r.invalidateOpenTripsCache(ctx)
	return nil
}

func (r *tripRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

// ListOpen returns bookable trips joined with the public driver summary,
// soonest first. Results are cached briefly; the catalog is polled every
// few seconds by every session and tolerates staleness.
func (r *tripRepository) ListOpen(ctx context.Context, filter interfaces.TripFilter, fromDate string) ([]*models.TripWithDriver, error) {
	cacheKey := fmt.Sprintf("trips:open:%s:%s", filter.FromCity, fromDate)
	if r.cache != nil {
		var cached []*models.TripWithDriver
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	match := bson.M{
		"status": models.TripStatusOpen,
		"date":   bson.M{"$gte": fromDate},
	}
	if filter.FromCity != "" {
		match["from_loc"] = filter.FromCity
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "driver_id",
			"foreignField": "_id",
			"as":           "driver_profile",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$driver_profile", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"driver_profile.phone":                false,
			"driver_profile.subscription_status":  false,
			"driver_profile.subscription_end_date": false,
			"driver_profile.payment_verified":     false,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list open trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []*models.TripWithDriver{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode open trips: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, trips, openTripsCacheTTL)
	}

	return trips, nil
}

func (r *tripRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error) {
	return r.listByDriver(ctx, bson.M{"driver_id": driverID})
}

func (r *tripRepository) ListCompletedByDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Trip, error) {
	return r.listByDriver(ctx, bson.M{
		"driver_id": driverID,
		"status":    models.TripStatusCompleted,
	})
}

func (r *tripRepository) listByDriver(ctx context.Context, filter bson.M) ([]*models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []*models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode driver trips: %w", err)
	}

	return trips, nil
}

// DeleteCascade removes the trip and every request pointing at it in a
// single transaction, so a deleted trip never leaves orphaned requests.
func (r *tripRepository) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.collection.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to delete trip: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, apperrors.NotFound("trip")
		}

		if _, err := r.requests.DeleteMany(sessCtx, bson.M{"trip_id": id}); err != nil {
			return nil, fmt.Errorf("failed to delete trip requests: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	r.invalidateOpenTripsCache(ctx)
	return nil
}

func (r *tripRepository) invalidateOpenTripsCache(ctx context.Context) {
	if r.cache != nil {
		r.cache.DeletePattern(ctx, "trips:open:*")
	}
}
