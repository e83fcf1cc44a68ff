package services

import (
	"context"
	"errors"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileService interface {
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)

	// EnsureProfile is the explicit repair operation: it returns the
	// stored profile, or regenerates a default passenger profile when
	// the row has gone missing. Called from session initialization, not
	// hidden inside a getter.
	EnsureProfile(ctx context.Context, userID primitive.ObjectID, fullName string) (*models.Profile, error)

	UpdateContact(ctx context.Context, auth *AuthContext, phone string) error
	UpdateVehicle(ctx context.Context, auth *AuthContext, input *VehicleInput) error
}

type VehicleInput struct {
	CarBrand string `json:"car_brand" binding:"required"`
	CarModel string `json:"car_model" binding:"required"`
	CarColor string `json:"car_color"`
	CarPlate string `json:"car_plate" binding:"required,license_plate"`
}

type profileService struct {
	profileRepo interfaces.ProfileRepository
	logger      *logger.Logger
}

func NewProfileService(profileRepo interfaces.ProfileRepository, log *logger.Logger) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      log,
	}
}

func (s *profileService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *profileService) EnsureProfile(ctx context.Context, userID primitive.ObjectID, fullName string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Row missing, e.g. after a database reset. Regenerate with the
	// default role; an admin restores driver rights afterwards.
	if fullName == "" {
		fullName = "Usuario"
	}
	repaired := &models.Profile{
		ID:                 userID,
		FullName:           fullName,
		Role:               models.RolePassenger,
		SubscriptionStatus: models.SubscriptionInactive,
	}

	if err := s.profileRepo.Create(ctx, repaired); err != nil {
		// Lost a race with another session doing the same repair.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.profileRepo.GetByID(ctx, userID)
		}
		return nil, err
	}

	s.logger.WithUserID(userID).Warn("profile was missing and has been regenerated")
	return repaired, nil
}

func (s *profileService) UpdateContact(ctx context.Context, auth *AuthContext, phone string) error {
	if !auth.IsAuthenticated() {
		return apperrors.Validation("authentication required")
	}

	return s.profileRepo.Update(ctx, auth.UserID, map[string]interface{}{
		"phone": phone,
	})
}

func (s *profileService) UpdateVehicle(ctx context.Context, auth *AuthContext, input *VehicleInput) error {
	if !auth.IsAuthenticated() {
		return apperrors.Validation("authentication required")
	}

	return s.profileRepo.Update(ctx, auth.UserID, map[string]interface{}{
		"car_brand": input.CarBrand,
		"car_model": input.CarModel,
		"car_color": input.CarColor,
		"car_plate": input.CarPlate,
	})
}
