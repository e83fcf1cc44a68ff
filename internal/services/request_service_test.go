package services

import (
	"context"
	"sync"
	"testing"

	"halador/internal/apperrors"
	"halador/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func passengerAuth(id primitive.ObjectID, name string) *AuthContext {
	return &AuthContext{UserID: id, Role: models.RolePassenger, FullName: name}
}

func openTrip(t *testing.T, tripRepo *fakeTripRepo, driverID primitive.ObjectID, seats int) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		DriverID:       driverID,
		FromLoc:        "Lima",
		ToLoc:          "Arequipa",
		Date:           "2026-10-15",
		Time:           "08:30",
		Price:          80,
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		Status:         models.TripStatusOpen,
	}
	require.NoError(t, tripRepo.Create(context.Background(), trip))
	return trip
}

func TestCreateRequest(t *testing.T) {
	driverID := primitive.NewObjectID()
	passengerID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 3)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())

	request, err := svc.CreateRequest(context.Background(), passengerAuth(passengerID, "Maria Quispe"), trip.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, driverID, request.DriverID)
	assert.Equal(t, "Maria Quispe", request.PassengerName)

	// Requesting does not touch seat inventory.
	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.SeatsAvailable)
}

func TestCreateRequestOwnTrip(t *testing.T) {
	driverID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 3)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())

	_, err := svc.CreateRequest(context.Background(), passengerAuth(driverID, "Carlos Mendoza"), trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateRequestClosedTrip(t *testing.T) {
	tests := []struct {
		name   string
		status models.TripStatus
	}{
		{"completed trip", models.TripStatusCompleted},
		{"cancelled trip", models.TripStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tripRepo := newFakeTripRepo()
			requestRepo := newFakeRequestRepo(tripRepo)
			trip := openTrip(t, tripRepo, primitive.NewObjectID(), 3)
			require.NoError(t, tripRepo.UpdateStatus(context.Background(), trip.ID, tt.status))

			svc := NewRequestService(requestRepo, tripRepo, testLogger())

			_, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
			assert.ErrorIs(t, err, apperrors.ErrState)
		})
	}
}

func TestCreateRequestDuplicate(t *testing.T) {
	passengerID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, primitive.NewObjectID(), 3)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())

	_, err := svc.CreateRequest(context.Background(), passengerAuth(passengerID, "Maria"), trip.ID)
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), passengerAuth(passengerID, "Maria"), trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestAcceptRequestOwnership(t *testing.T) {
	driverID := primitive.NewObjectID()
	intruderID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 3)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())
	request, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
	require.NoError(t, err)

	err = svc.AcceptRequest(context.Background(), driverAuth(intruderID), request.ID)
	assert.ErrorIs(t, err, apperrors.ErrAuthorization)
}

func TestAcceptRequestDecrementsSeat(t *testing.T) {
	driverID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 2)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())
	request, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.AcceptRequest(context.Background(), driverAuth(driverID), request.ID))

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SeatsAvailable)
	assert.Equal(t, models.TripStatusOpen, stored.Status)

	// Accepting an already accepted request is a state error.
	err = svc.AcceptRequest(context.Background(), driverAuth(driverID), request.ID)
	assert.ErrorIs(t, err, apperrors.ErrState)
}

func TestAcceptLastSeatFlipsTripFull(t *testing.T) {
	driverID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 1)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())

	first, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
	require.NoError(t, err)
	second, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Jorge"), trip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.AcceptRequest(context.Background(), driverAuth(driverID), first.ID))

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.SeatsAvailable)
	assert.Equal(t, models.TripStatusFull, stored.Status)

	// The second accept finds no seat. The request stays pending so the
	// driver can still reject it cleanly.
	err = svc.AcceptRequest(context.Background(), driverAuth(driverID), second.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacity)

	pending, err := requestRepo.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, pending.Status)
}

// Two accepts racing for the last seat: exactly one wins, the seat
// count never goes negative.
func TestConcurrentAcceptsSingleSeat(t *testing.T) {
	driverID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 1)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())

	requests := make([]*models.TripRequest, 2)
	for i, name := range []string{"Maria", "Jorge"} {
		request, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), name), trip.ID)
		require.NoError(t, err)
		requests[i] = request
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.AcceptRequest(context.Background(), driverAuth(driverID), requests[i].ID)
		}(i)
	}
	wg.Wait()

	var accepted, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case assert.ErrorIs(t, err, apperrors.ErrCapacity):
			capacity++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, capacity)

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.SeatsAvailable)
	assert.Equal(t, models.TripStatusFull, stored.Status)
}

func TestRejectRequestKeepsSeats(t *testing.T) {
	driverID := primitive.NewObjectID()

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 2)

	svc := NewRequestService(requestRepo, tripRepo, testLogger())
	request, err := svc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RejectRequest(context.Background(), driverAuth(driverID), request.ID))

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.SeatsAvailable)

	rejected, err := requestRepo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
}

func TestAcceptRequestAfterCompletion(t *testing.T) {
	driverID := primitive.NewObjectID()
	profileRepo := newFakeProfileRepo()
	require.NoError(t, profileRepo.Create(context.Background(), activeDriverProfile(driverID)))

	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo(tripRepo)
	trip := openTrip(t, tripRepo, driverID, 2)

	requestSvc := NewRequestService(requestRepo, tripRepo, testLogger())
	tripSvc := NewTripService(tripRepo, profileRepo, newFakeCache(), testLogger())

	request, err := requestSvc.CreateRequest(context.Background(), passengerAuth(primitive.NewObjectID(), "Maria"), trip.ID)
	require.NoError(t, err)

	require.NoError(t, tripSvc.CompleteTrip(context.Background(), driverAuth(driverID), trip.ID))

	// A completed trip takes no more passengers; the leftover pending
	// request cannot drag it back into the seat machine.
	err = requestSvc.AcceptRequest(context.Background(), driverAuth(driverID), request.ID)
	assert.ErrorIs(t, err, apperrors.ErrState)

	stored, err := tripRepo.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.SeatsAvailable)

	pending, err := requestRepo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, pending.Status)

	// And the completion counter cannot be bumped twice.
	err = tripSvc.CompleteTrip(context.Background(), driverAuth(driverID), trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrState)

	profile, err := profileRepo.GetByID(context.Background(), driverID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TripsCompleted)
}
