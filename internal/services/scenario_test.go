package services

import (
	"context"
	"testing"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Full lifecycle: a driver pays and gets approved, publishes a
// Lima -> Arequipa trip, fills it, completes it, and both passengers
// leave reviews. Exercises the seams between the gate, the catalog,
// the seat ledger and the reputation aggregate.
func TestTripLifecycle(t *testing.T) {
	ctx := context.Background()

	profileRepo := newFakeProfileRepo()
	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	reviewRepo := newFakeReviewRepo()

	tripSvc := NewTripService(tripRepo, profileRepo, newFakeCache(), testLogger())
	requestSvc := NewRequestService(requestRepo, tripRepo, testLogger())
	reviewSvc := NewReviewService(reviewRepo, tripRepo, requestRepo, profileRepo, testLogger())
	subscriptionSvc := NewSubscriptionService(profileRepo, testLogger())

	driverID := primitive.NewObjectID()
	require.NoError(t, profileRepo.Create(ctx, &models.Profile{
		ID:                 driverID,
		FullName:           "Carlos Mendoza",
		Role:               models.RoleDriver,
		SubscriptionStatus: models.SubscriptionInactive,
	}))
	driver := driverAuth(driverID)

	// Publishing before paying is gated.
	input := &PublishTripInput{
		From:  "Lima",
		To:    "Arequipa",
		Date:  time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
		Time:  "21:00",
		Price: 90,
		Seats: 2,
	}
	_, err := tripSvc.PublishTrip(ctx, driver, input)
	require.ErrorIs(t, err, apperrors.ErrGate)

	// Driver reports the transfer, admin approves.
	require.NoError(t, subscriptionSvc.ReportPayment(ctx, driver))
	require.NoError(t, subscriptionSvc.ApprovePayment(ctx, adminAuth(), driverID))

	trip, err := tripSvc.PublishTrip(ctx, driver, input)
	require.NoError(t, err)

	// Passengers find it in the catalog.
	listed, err := tripSvc.ListOpenTrips(ctx, interfaces.TripFilter{FromCity: "Lima"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Two passengers request and get accepted; the trip fills.
	passengerA := passengerAuth(primitive.NewObjectID(), "Maria Quispe")
	passengerB := passengerAuth(primitive.NewObjectID(), "Jorge Huaman")

	reqA, err := requestSvc.CreateRequest(ctx, passengerA, trip.ID)
	require.NoError(t, err)
	reqB, err := requestSvc.CreateRequest(ctx, passengerB, trip.ID)
	require.NoError(t, err)

	require.NoError(t, requestSvc.AcceptRequest(ctx, driver, reqA.ID))
	require.NoError(t, requestSvc.AcceptRequest(ctx, driver, reqB.ID))

	full, err := tripRepo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusFull, full.Status)

	// A full trip no longer shows in the catalog.
	listed, err = tripSvc.ListOpenTrips(ctx, interfaces.TripFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	// A latecomer can still queue, but there is no seat to accept.
	late, err := requestSvc.CreateRequest(ctx, passengerAuth(primitive.NewObjectID(), "Lucia"), trip.ID)
	require.NoError(t, err)
	err = requestSvc.AcceptRequest(ctx, driver, late.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacity)

	// Reviews only open once the trip completes.
	_, err = reviewSvc.SubmitReview(ctx, passengerA, &SubmitReviewInput{TripID: trip.ID, Rating: 5})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, tripSvc.CompleteTrip(ctx, driver, trip.ID))

	_, err = reviewSvc.SubmitReview(ctx, passengerA, &SubmitReviewInput{TripID: trip.ID, Rating: 5, Comment: "Excelente viaje"})
	require.NoError(t, err)
	_, err = reviewSvc.SubmitReview(ctx, passengerB, &SubmitReviewInput{TripID: trip.ID, Rating: 4})
	require.NoError(t, err)

	// The latecomer never rode, so reviewing is off limits.
	_, err = reviewSvc.SubmitReview(ctx, passengerAuth(late.PassengerID, "Lucia"), &SubmitReviewInput{TripID: trip.ID, Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrAuthorization)

	profile, err := profileRepo.GetByID(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TripsCompleted)
	assert.Equal(t, 2, profile.RatingCount)
	assert.InDelta(t, 4.5, profile.RatingAverage, 0.001)
}
