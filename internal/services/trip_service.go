package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/internal/utils"
	"halador/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripService interface {
	PublishTrip(ctx context.Context, auth *AuthContext, input *PublishTripInput) (*models.Trip, error)
	ListOpenTrips(ctx context.Context, filter interfaces.TripFilter) ([]*models.TripWithDriver, error)
	ListDriverTrips(ctx context.Context, auth *AuthContext) ([]*models.Trip, error)
	ListCompletedDriverTrips(ctx context.Context, auth *AuthContext) ([]*models.Trip, error)
	DeleteTrip(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) error
	CompleteTrip(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) error
}

type PublishTripInput struct {
	From           string   `json:"from" binding:"required"`
	To             string   `json:"to" binding:"required"`
	Date           string   `json:"date" binding:"required,trip_date"`
	Time           string   `json:"time" binding:"required,trip_time"`
	Price          float64  `json:"price" binding:"required"`
	Seats          int      `json:"seats" binding:"required"`
	Features       []string `json:"features"`
	IdempotencyKey string   `json:"-"`
}

type tripService struct {
	tripRepo    interfaces.TripRepository
	profileRepo interfaces.ProfileRepository
	cache       CacheService
	logger      *logger.Logger
}

func NewTripService(
	tripRepo interfaces.TripRepository,
	profileRepo interfaces.ProfileRepository,
	cache CacheService,
	log *logger.Logger,
) TripService {
	return &tripService{
		tripRepo:    tripRepo,
		profileRepo: profileRepo,
		cache:       cache,
		logger:      log,
	}
}

// PublishTrip creates an open trip for the authenticated driver. The
// write races a bounded timer: past the deadline the outcome is
// unknown, so the caller gets a TimeoutError and a manual retry with
// the same idempotency key resolves to the trip that did (or did not)
// land.
func (s *tripService) PublishTrip(ctx context.Context, auth *AuthContext, input *PublishTripInput) (*models.Trip, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	if err := validatePublishInput(input); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPublishGate(ctx, profile); err != nil {
		return nil, err
	}

	key := input.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	// Claim the key before writing. A retry after a timeout lands here
	// again: the claim fails and we resolve to the stored trip instead
	// of publishing a duplicate.
	if s.cache != nil {
		claimed, err := s.cache.SetNX(ctx, "idem:trip:"+key, auth.UserID.Hex(), utils.IdempotencyKeyTTL)
		if err == nil && !claimed {
			if existing, err := s.tripRepo.GetByIdempotencyKey(ctx, key); err == nil {
				return existing, nil
			}
			return nil, apperrors.Duplicate("a publish with this idempotency key is already in flight")
		}
	}

	trip := &models.Trip{
		DriverID:       auth.UserID,
		FromLoc:        input.From,
		ToLoc:          input.To,
		Date:           input.Date,
		Time:           input.Time,
		Price:          input.Price,
		SeatsTotal:     input.Seats,
		SeatsAvailable: input.Seats,
		Status:         models.TripStatusOpen,
		Features:       input.Features,
		IdempotencyKey: key,
	}

	if city := models.LookupCity(input.From); city != nil {
		trip.DriverLat = &city.Lat
		trip.DriverLng = &city.Lng
	}

	writeCtx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()

	if err := s.tripRepo.Create(writeCtx, trip); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WithUserID(auth.UserID).Warn("trip publish timed out, outcome indeterminate")
			return nil, apperrors.Timeout("trip publish did not complete within %s", utils.PublishTimeout)
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// The earlier write made it after all.
			if existing, getErr := s.tripRepo.GetByIdempotencyKey(ctx, key); getErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"trip_id":   trip.ID.Hex(),
		"driver_id": auth.UserID.Hex(),
		"from":      trip.FromLoc,
		"to":        trip.ToLoc,
	}).Info("trip published")

	return trip, nil
}

// checkPublishGate enforces the subscription gate, including the lazy
// expiry: an active subscription past its end date is downgraded on the
// spot, there is no background job.
func (s *tripService) checkPublishGate(ctx context.Context, profile *models.Profile) error {
	now := time.Now()

	if profile.SubscriptionStatus == models.SubscriptionActive && !profile.HasActiveSubscription(now) {
		if err := s.profileRepo.Update(ctx, profile.ID, map[string]interface{}{
			"subscription_status":   models.SubscriptionInactive,
			"subscription_end_date": nil,
		}); err != nil {
			s.logger.WithError(err).Error("failed to downgrade expired subscription")
		}
		return apperrors.Gate("subscription expired, report a new payment to publish trips")
	}

	if !profile.HasActiveSubscription(now) {
		return apperrors.Gate("an active subscription is required to publish trips")
	}

	return nil
}

func (s *tripService) ListOpenTrips(ctx context.Context, filter interfaces.TripFilter) ([]*models.TripWithDriver, error) {
	today := time.Now().Format(utils.TripDateFormat)
	return s.tripRepo.ListOpen(ctx, filter, today)
}

func (s *tripService) ListDriverTrips(ctx context.Context, auth *AuthContext) ([]*models.Trip, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	return s.tripRepo.ListByDriver(ctx, auth.UserID)
}

func (s *tripService) ListCompletedDriverTrips(ctx context.Context, auth *AuthContext) ([]*models.Trip, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	return s.tripRepo.ListCompletedByDriver(ctx, auth.UserID)
}

func (s *tripService) DeleteTrip(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != auth.UserID {
		return apperrors.Authorization("only the owning driver may delete a trip")
	}

	if err := s.tripRepo.DeleteCascade(ctx, tripID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"trip_id":   tripID.Hex(),
		"driver_id": auth.UserID.Hex(),
	}).Info("trip deleted")

	return nil
}

func (s *tripService) CompleteTrip(ctx context.Context, auth *AuthContext, tripID primitive.ObjectID) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != auth.UserID {
		return apperrors.Authorization("only the owning driver may complete a trip")
	}
	if trip.Status != models.TripStatusOpen && trip.Status != models.TripStatusFull {
		return apperrors.State("trip is %s, cannot complete", trip.Status)
	}

	if err := s.tripRepo.UpdateStatus(ctx, tripID, models.TripStatusCompleted); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementTripsCompleted(ctx, auth.UserID); err != nil {
		s.logger.WithError(err).Error("failed to increment trips completed")
	}

	return nil
}

func validatePublishInput(input *PublishTripInput) error {
	if input.From == "" || input.To == "" || input.Date == "" || input.Time == "" {
		return apperrors.Validation("from, to, date and time are required")
	}
	if input.Price <= 0 {
		return apperrors.Validation("price must be greater than 0")
	}
	if input.Seats < utils.MinTripSeats {
		return apperrors.Validation("at least %d seat is required", utils.MinTripSeats)
	}
	if input.Seats > utils.MaxTripSeats {
		return apperrors.Validation("at most %d seats are allowed", utils.MaxTripSeats)
	}
	if _, err := time.Parse(utils.TripDateFormat, input.Date); err != nil {
		return apperrors.Validation(fmt.Sprintf("date must be in %s format", utils.TripDateFormat))
	}
	if _, err := time.Parse(utils.TripTimeFormat, input.Time); err != nil {
		return apperrors.Validation(fmt.Sprintf("time must be in %s format", utils.TripTimeFormat))
	}
	return nil
}
