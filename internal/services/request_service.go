package services

import (
	"context"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestService interface {
	CreateRequest(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) (*models.TripRequest, error)
	AcceptRequest(ctx context.Context, auth *AuthContext, requestID primitive.ObjectID) error
	RejectRequest(ctx context.Context, auth *AuthContext, requestID primitive.ObjectID) error
	ListForDriver(ctx context.Context, auth *AuthContext) ([]*models.DriverRequestView, error)
	ListForPassenger(ctx context.Context, auth *AuthContext) ([]*models.PassengerRequestView, error)
}

type requestService struct {
	requestRepo interfaces.TripRequestRepository
	tripRepo    interfaces.TripRepository
	logger      *logger.Logger
}

func NewRequestService(
	requestRepo interfaces.TripRequestRepository,
	tripRepo interfaces.TripRepository,
	log *logger.Logger,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		tripRepo:    tripRepo,
		logger:      log,
	}
}

// CreateRequest queues a pending request. Seat availability is not
// checked here: several passengers may line up for the same seat and
// the driver picks at accept time.
func (s *requestService) CreateRequest(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) (*models.TripRequest, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("sign in to request a seat")
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == models.TripStatusCancelled || trip.Status == models.TripStatusCompleted {
		return nil, apperrors.State("trip is %s, requests are closed", trip.Status)
	}
	if trip.DriverID == auth.UserID {
		return nil, apperrors.Validation("drivers cannot request a seat on their own trip")
	}

	request := &models.TripRequest{
		TripID:        tripID,
		DriverID:      trip.DriverID,
		PassengerID:   auth.UserID,
		PassengerName: auth.FullName,
		Status:        models.RequestStatusPending,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"request_id":   request.ID.Hex(),
		"trip_id":      tripID.Hex(),
		"passenger_id": auth.UserID.Hex(),
	}).Info("seat requested")

	return request, nil
}

// AcceptRequest is the only contended mutation in the system. The
// ownership and pending checks here give friendly errors; the
// authoritative guard is the storage-level transaction in
// AcceptWithSeat, which re-checks the pending status and decrements the
// seat conditionally in one statement.
func (s *requestService) AcceptRequest(ctx context.Context, auth *AuthContext, requestID primitive.ObjectID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.DriverID != auth.UserID {
		return apperrors.Authorization("request does not belong to one of your trips")
	}
	if !request.IsPending() {
		return apperrors.State("request is already %s", request.Status)
	}

	seatsLeft, err := s.requestRepo.AcceptWithSeat(ctx, requestID)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"request_id": requestID.Hex(),
		"trip_id":    request.TripID.Hex(),
		"seats_left": seatsLeft,
	}).Info("request accepted")

	return nil
}

func (s *requestService) RejectRequest(ctx context.Context, auth *AuthContext, requestID primitive.ObjectID) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.DriverID != auth.UserID {
		return apperrors.Authorization("request does not belong to one of your trips")
	}

	// Seat inventory is untouched on reject.
	if err := s.requestRepo.UpdateStatus(ctx, requestID, models.RequestStatusRejected); err != nil {
		return err
	}

	s.logger.WithField("request_id", requestID.Hex()).Info("request rejected")
	return nil
}

func (s *requestService) ListForDriver(ctx context.Context, auth *AuthContext) ([]*models.DriverRequestView, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	return s.requestRepo.ListForDriver(ctx, auth.UserID)
}

func (s *requestService) ListForPassenger(ctx context.Context, auth *AuthContext) ([]*models.PassengerRequestView, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	return s.requestRepo.ListForPassenger(ctx, auth.UserID)
}
