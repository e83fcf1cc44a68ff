package services

import (
	"context"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/internal/utils"
	"halador/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionService is the gate on a driver's right to publish.
// Payment itself happens off-platform (Yape/Plin transfer); the service
// only moves the claim through inactive -> pending -> active/inactive,
// with an admin as the arbiter.
type SubscriptionService interface {
	ReportPayment(ctx context.Context, auth *AuthContext) error
	ApprovePayment(ctx context.Context, auth *AuthContext, userID primitive.ObjectID) error
	RejectPayment(ctx context.Context, auth *AuthContext, userID primitive.ObjectID) error
	ListPendingPayments(ctx context.Context, auth *AuthContext) ([]*models.Profile, error)
}

type subscriptionService struct {
	profileRepo interfaces.ProfileRepository
	logger      *logger.Logger
}

func NewSubscriptionService(profileRepo interfaces.ProfileRepository, log *logger.Logger) SubscriptionService {
	return &subscriptionService{
		profileRepo: profileRepo,
		logger:      log,
	}
}

// ReportPayment records the driver's claim of having paid. Nothing is
// validated here; the admin verifies the transfer by hand.
func (s *subscriptionService) ReportPayment(ctx context.Context, auth *AuthContext) error {
	if !auth.IsAuthenticated() {
		return apperrors.Validation("authentication required")
	}

	applied, err := s.profileRepo.UpdateSubscriptionIf(ctx, auth.UserID, models.SubscriptionInactive, map[string]interface{}{
		"subscription_status": models.SubscriptionPending,
	})
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.State("payment already reported or subscription already active")
	}

	s.logger.WithUserID(auth.UserID).Info("payment reported, awaiting admin approval")
	return nil
}

func (s *subscriptionService) ApprovePayment(ctx context.Context, auth *AuthContext, userID primitive.ObjectID) error {
	if !auth.IsAdmin() {
		return apperrors.Authorization("only admins may approve payments")
	}

	endDate := time.Now().AddDate(0, 0, utils.SubscriptionPeriodDays)
	applied, err := s.profileRepo.UpdateSubscriptionIf(ctx, userID, models.SubscriptionPending, map[string]interface{}{
		"subscription_status":   models.SubscriptionActive,
		"subscription_end_date": endDate,
		"payment_verified":      true,
	})
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.State("no pending payment for this user")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID.Hex(),
		"admin_id": auth.UserID.Hex(),
		"end_date": endDate.Format(utils.TripDateFormat),
	}).Info("subscription approved")

	return nil
}

func (s *subscriptionService) RejectPayment(ctx context.Context, auth *AuthContext, userID primitive.ObjectID) error {
	if !auth.IsAdmin() {
		return apperrors.Authorization("only admins may reject payments")
	}

	applied, err := s.profileRepo.UpdateSubscriptionIf(ctx, userID, models.SubscriptionPending, map[string]interface{}{
		"subscription_status":   models.SubscriptionInactive,
		"subscription_end_date": nil,
	})
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.State("no pending payment for this user")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  userID.Hex(),
		"admin_id": auth.UserID.Hex(),
	}).Info("payment rejected")

	return nil
}

func (s *subscriptionService) ListPendingPayments(ctx context.Context, auth *AuthContext) ([]*models.Profile, error) {
	if !auth.IsAdmin() {
		return nil, apperrors.Authorization("only admins may list pending payments")
	}
	return s.profileRepo.ListBySubscriptionStatus(ctx, models.SubscriptionPending)
}
