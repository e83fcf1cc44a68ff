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

type tripRequestRepository struct {
	collection *mongo.Collection
	trips      *mongo.Collection
	cache      services.CacheService
}

func NewTripRequestRepository(db *mongo.Database, cache services.CacheService) interfaces.TripRequestRepository {
	return &tripRequestRepository{
		collection: db.Collection("trip_requests"),
		trips:      db.Collection("trips"),
		cache:      cache,
	}
}

func (r *tripRequestRepository) Create(ctx context.Context, request *models.TripRequest) error {
	request.ID = primitive.NewObjectID()
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Duplicate("seat already requested for this trip")
		}
		return fmt.Errorf("failed to create trip request: %w", err)
	}

	return nil
}

func (r *tripRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TripRequest, error) {
	var request models.TripRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("trip request")
		}
		return nil, fmt.Errorf("failed to get trip request: %w", err)
	}

	return &request, nil
}

// AcceptWithSeat is the one operation in the system where concurrent
// writers genuinely race: any number of driver sessions may accept
// requests against the same seat pool. Both mutations run inside one
// transaction, and the seat decrement is a single conditional update
// (matched only while the trip is open and seats_available > 0) so two
// accepts can never both take the last seat and a completed or cancelled
// trip can never take one at all. The same update flips the trip to full
// when the last seat goes.
func (r *tripRequestRepository) AcceptWithSeat(ctx context.Context, requestID primitive.ObjectID) (int, error) {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var request models.TripRequest
		err := r.collection.FindOneAndUpdate(
			sessCtx,
			bson.M{"_id": requestID, "status": models.RequestStatusPending},
			bson.M{"$set": bson.M{
				"status":     models.RequestStatusAccepted,
				"updated_at": time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&request)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperrors.State("request is not pending")
			}
			return nil, fmt.Errorf("failed to accept request: %w", err)
		}

		seatDecrement := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"seats_available": bson.M{"$add": bson.A{"$seats_available", -1}},
				"status": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$seats_available", 1}},
					models.TripStatusFull,
					"$status",
				}},
				"updated_at": "$$NOW",
			}}},
		}

		var trip models.Trip
		err = r.trips.FindOneAndUpdate(
			sessCtx,
			bson.M{
				"_id":             request.TripID,
				"status":          models.TripStatusOpen,
				"seats_available": bson.M{"$gt": 0},
			},
			seatDecrement,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&trip)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				// Unmatched means either the seats ran out or the trip
				// already left the open state (full, completed,
				// cancelled). Abort either way so the request stays
				// pending; read the trip to report which it was.
				var current models.Trip
				if lookupErr := r.trips.FindOne(sessCtx, bson.M{"_id": request.TripID}).Decode(&current); lookupErr == nil {
					if current.Status != models.TripStatusOpen && current.Status != models.TripStatusFull {
						return nil, apperrors.State("trip is no longer accepting passengers")
					}
				}
				return nil, apperrors.Capacity("no seats remain on this trip")
			}
			return nil, fmt.Errorf("failed to decrement seats: %w", err)
		}

		return trip.SeatsAvailable, nil
	})
	if err != nil {
		return 0, err
	}

	if r.cache != nil {
		r.cache.DeletePattern(ctx, "trips:open:*")
	}

	return result.(int), nil
}

func (r *tripRequestRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.RequestStatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.State("request is not pending")
	}

	return nil
}

// ListForDriver joins the passenger phone only onto accepted rows:
// a pending requester's contact details are not the driver's to see.
func (r *tripRequestRepository) ListForDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.DriverRequestView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"driver_id": driverID,
			"status":    bson.M{"$ne": models.RequestStatusRejected},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "trips",
			"localField":   "trip_id",
			"foreignField": "_id",
			"as":           "trip",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$trip", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "passenger_id",
			"foreignField": "_id",
			"as":           "passenger_profile",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$passenger_profile", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"passenger_phone": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.RequestStatusAccepted}},
				"$passenger_profile.phone",
				"",
			}},
		}}},
		{{Key: "$project", Value: bson.M{"passenger_profile": false}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver requests: %w", err)
	}
	defer cursor.Close(ctx)

	views := []*models.DriverRequestView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode driver requests: %w", err)
	}

	return views, nil
}

func (r *tripRequestRepository) ListForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error) {
	return r.listPassengerViews(ctx, bson.M{"passenger_id": passengerID}, nil)
}

func (r *tripRequestRepository) ListAcceptedCompletedForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error) {
	return r.listPassengerViews(
		ctx,
		bson.M{"passenger_id": passengerID, "status": models.RequestStatusAccepted},
		bson.M{"trip.status": models.TripStatusCompleted},
	)
}

func (r *tripRequestRepository) listPassengerViews(ctx context.Context, match bson.M, postMatch bson.M) ([]*models.PassengerRequestView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "trips",
			"localField":   "trip_id",
			"foreignField": "_id",
			"as":           "trip",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$trip", "preserveNullAndEmptyArrays": true}}},
	}
	if postMatch != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: postMatch}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "driver_id",
			"foreignField": "_id",
			"as":           "driver_profile",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$driver_profile", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"driver_name":  "$driver_profile.full_name",
			"driver_phone": "$driver_profile.phone",
		}}},
		bson.D{{Key: "$project", Value: bson.M{"driver_profile": false}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list passenger requests: %w", err)
	}
	defer cursor.Close(ctx)

	views := []*models.PassengerRequestView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode passenger requests: %w", err)
	}

	return views, nil
}

func (r *tripRequestRepository) HasAccepted(ctx context.Context, tripID, passengerID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"trip_id":      tripID,
		"passenger_id": passengerID,
		"status":       models.RequestStatusAccepted,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check accepted request: %w", err)
	}

	return count > 0, nil
}
