package services

import (
	"context"
	"testing"

	"halador/internal/apperrors"
	"halador/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureProfileReturnsExisting(t *testing.T) {
	userID := primitive.NewObjectID()
	profileRepo := newFakeProfileRepo()
	require.NoError(t, profileRepo.Create(context.Background(), &models.Profile{
		ID:       userID,
		FullName: "Carlos Mendoza",
		Role:     models.RoleDriver,
	}))

	svc := NewProfileService(profileRepo, testLogger())

	profile, err := svc.EnsureProfile(context.Background(), userID, "Carlos Mendoza")
	require.NoError(t, err)

	// The stored profile wins; the repair path never touches it.
	assert.Equal(t, models.RoleDriver, profile.Role)
}

// A missing profile row is regenerated with passenger defaults. Driver
// rights are restored by an admin afterwards, never automatically.
func TestEnsureProfileRegeneratesMissing(t *testing.T) {
	userID := primitive.NewObjectID()
	profileRepo := newFakeProfileRepo()

	svc := NewProfileService(profileRepo, testLogger())

	profile, err := svc.EnsureProfile(context.Background(), userID, "Maria Quispe")
	require.NoError(t, err)

	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "Maria Quispe", profile.FullName)
	assert.Equal(t, models.RolePassenger, profile.Role)
	assert.Equal(t, models.SubscriptionInactive, profile.SubscriptionStatus)

	stored, err := profileRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, stored.ID)
}

func TestEnsureProfileDefaultsName(t *testing.T) {
	userID := primitive.NewObjectID()
	svc := NewProfileService(newFakeProfileRepo(), testLogger())

	profile, err := svc.EnsureProfile(context.Background(), userID, "")
	require.NoError(t, err)
	assert.Equal(t, "Usuario", profile.FullName)
}

func TestUpdateVehicle(t *testing.T) {
	userID := primitive.NewObjectID()
	profileRepo := newFakeProfileRepo()
	require.NoError(t, profileRepo.Create(context.Background(), &models.Profile{
		ID:       userID,
		FullName: "Carlos Mendoza",
		Role:     models.RoleDriver,
	}))

	svc := NewProfileService(profileRepo, testLogger())

	err := svc.UpdateVehicle(context.Background(), driverAuth(userID), &VehicleInput{
		CarBrand: "Toyota",
		CarModel: "Yaris",
		CarColor: "Rojo",
		CarPlate: "ABC-123",
	})
	require.NoError(t, err)

	profile, err := profileRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", profile.CarBrand)
	assert.Equal(t, "ABC-123", profile.CarPlate)
}

func TestUpdateContactRequiresAuth(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo(), testLogger())

	err := svc.UpdateContact(context.Background(), nil, "987654321")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
