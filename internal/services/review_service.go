package services

import (
	"context"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/internal/utils"
	"halador/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, auth *AuthContext, input *SubmitReviewInput) (*models.Review, error)
	ListForDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Review, error)

	// PassengerHistory returns the passenger's completed trips annotated
	// with whether each one has already been reviewed.
	PassengerHistory(ctx context.Context, auth *AuthContext) ([]*HistoryEntry, error)
}

type SubmitReviewInput struct {
	TripID  primitive.ObjectID `json:"trip_id" binding:"required"`
	Rating  int                `json:"rating" binding:"required,rating_value"`
	Comment string             `json:"comment"`
}

type HistoryEntry struct {
	*models.PassengerRequestView
	HasReviewed bool `json:"has_reviewed"`
}

type reviewService struct {
	reviewRepo  interfaces.ReviewRepository
	tripRepo    interfaces.TripRepository
	requestRepo interfaces.TripRequestRepository
	profileRepo interfaces.ProfileRepository
	logger      *logger.Logger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	tripRepo interfaces.TripRepository,
	requestRepo interfaces.TripRequestRepository,
	profileRepo interfaces.ProfileRepository,
	log *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		tripRepo:    tripRepo,
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		logger:      log,
	}
}

// SubmitReview records a one-time rating of the trip's driver and
// immediately folds it into the driver's aggregate. The reviewee is
// always the driver of the trip; the field is reviewee_id everywhere.
func (s *reviewService) SubmitReview(ctx context.Context, auth *AuthContext, input *SubmitReviewInput) (*models.Review, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}
	if input.Rating < utils.MinRating || input.Rating > utils.MaxRating {
		return nil, apperrors.Validation("rating must be between %d and %d", utils.MinRating, utils.MaxRating)
	}

	trip, err := s.tripRepo.GetByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusCompleted {
		return nil, apperrors.Validation("only completed trips can be reviewed")
	}

	rode, err := s.requestRepo.HasAccepted(ctx, input.TripID, auth.UserID)
	if err != nil {
		return nil, err
	}
	if !rode {
		return nil, apperrors.Authorization("only passengers who rode this trip may review it")
	}

	exists, err := s.reviewRepo.Exists(ctx, input.TripID, auth.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Duplicate("trip already reviewed")
	}

	review := &models.Review{
		TripID:     input.TripID,
		ReviewerID: auth.UserID,
		RevieweeID: trip.DriverID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.refreshReputation(ctx, trip.DriverID)

	s.logger.WithFields(map[string]interface{}{
		"trip_id":     input.TripID.Hex(),
		"reviewer_id": auth.UserID.Hex(),
		"rating":      input.Rating,
	}).Info("review submitted")

	return review, nil
}

// refreshReputation recomputes the reviewee's aggregate from the stored
// reviews and writes it back onto the profile. Done inline on every
// submission; volumes are small.
func (s *reviewService) refreshReputation(ctx context.Context, revieweeID primitive.ObjectID) {
	summary, err := s.reviewRepo.Summarize(ctx, revieweeID)
	if err != nil {
		s.logger.WithError(err).Error("failed to summarize ratings")
		return
	}

	if err := s.profileRepo.SetRating(ctx, revieweeID, summary.Average, summary.Count); err != nil {
		s.logger.WithError(err).Error("failed to write rating aggregate")
	}
}

func (s *reviewService) ListForDriver(ctx context.Context, driverID primitive.ObjectID) ([]*models.Review, error) {
	return s.reviewRepo.ListByReviewee(ctx, driverID)
}

func (s *reviewService) PassengerHistory(ctx context.Context, auth *AuthContext) ([]*HistoryEntry, error) {
	if !auth.IsAuthenticated() {
		return nil, apperrors.Validation("authentication required")
	}

	rides, err := s.requestRepo.ListAcceptedCompletedForPassenger(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	reviewedIDs, err := s.reviewRepo.ListTripIDsByReviewer(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	reviewed := make(map[primitive.ObjectID]bool, len(reviewedIDs))
	for _, id := range reviewedIDs {
		reviewed[id] = true
	}

	entries := make([]*HistoryEntry, 0, len(rides))
	for _, ride := range rides {
		entries = append(entries, &HistoryEntry{
			PassengerRequestView: ride,
			HasReviewed:          reviewed[ride.TripID],
		})
	}

	return entries, nil
}
