package interfaces

import (
	"context"

	"halador/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripRequestRepository interface {
	Create(ctx context.Context, request *models.TripRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TripRequest, error)

	// AcceptWithSeat flips the request to accepted and decrements the
	// parent trip's seat count as a single storage-level transaction.
	// The decrement is conditional on seats_available > 0; when the
	// trip is out of seats the whole operation fails and nothing is
	// written. Returns the seats remaining after the decrement.
	AcceptWithSeat(ctx context.Context, requestID primitive.ObjectID) (seatsLeft int, err error)

	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error

	// ListForDriver returns non-rejected requests against the driver's
	// trips, newest first. Passenger phone is joined only on accepted
	// rows.
	ListForDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.DriverRequestView, error)

	// ListForPassenger returns the passenger's own requests, newest
	// first, joined with trip and driver contact info.
	ListForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error)

	// ListAcceptedCompletedForPassenger feeds the history surface:
	// accepted requests whose trip is completed.
	ListAcceptedCompletedForPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.PassengerRequestView, error)

	HasAccepted(ctx context.Context, tripID, passengerID primitive.ObjectID) (bool, error)
}
