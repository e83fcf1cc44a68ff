package services

import (
	"testing"

	"halador/internal/validators"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The request DTOs carry the custom binding tags; bad payloads must be
// rejected at the binding layer before any service runs.
func TestInputBindingTags(t *testing.T) {
	validators.RegisterGinValidators()

	t.Run("publish trip", func(t *testing.T) {
		good := PublishTripInput{From: "Lima", To: "Cusco", Date: "2026-10-15", Time: "08:30", Price: 80, Seats: 3}
		require.NoError(t, binding.Validator.ValidateStruct(good))

		badDate := good
		badDate.Date = "15/10/2026"
		assert.Error(t, binding.Validator.ValidateStruct(badDate))

		badTime := good
		badTime.Time = "25:00"
		assert.Error(t, binding.Validator.ValidateStruct(badTime))
	})

	t.Run("submit review", func(t *testing.T) {
		good := SubmitReviewInput{TripID: primitive.NewObjectID(), Rating: 4}
		require.NoError(t, binding.Validator.ValidateStruct(good))

		outOfRange := good
		outOfRange.Rating = 6
		assert.Error(t, binding.Validator.ValidateStruct(outOfRange))
	})

	t.Run("vehicle", func(t *testing.T) {
		good := VehicleInput{CarBrand: "Toyota", CarModel: "Yaris", CarColor: "Rojo", CarPlate: "ABC-123"}
		require.NoError(t, binding.Validator.ValidateStruct(good))

		badPlate := good
		badPlate.CarPlate = "ABCD-12"
		assert.Error(t, binding.Validator.ValidateStruct(badPlate))
	})
}
