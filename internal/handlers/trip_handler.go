package handlers

import (
	"halador/internal/repositories/interfaces"
	"halador/internal/services"
	"halador/internal/utils"
	"halador/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripHandler struct {
	tripService services.TripService
}

func NewTripHandler(tripService services.TripService) *TripHandler {
	return &TripHandler{
		tripService: tripService,
	}
}

// PublishTrip creates a new trip offer. Clients may supply an
// Idempotency-Key header so a retry after a timeout cannot produce a
// second trip.
func (h *TripHandler) PublishTrip(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.PublishTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, validators.FormatBindingErrors(err))
		return
	}
	input.IdempotencyKey = c.GetHeader("Idempotency-Key")

	trip, err := h.tripService.PublishTrip(c.Request.Context(), auth, &input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Trip published successfully", trip)
}

// ListOpenTrips is the public catalog: open trips from today onward,
// optionally narrowed to an origin city.
func (h *TripHandler) ListOpenTrips(c *gin.Context) {
	filter := interfaces.TripFilter{
		FromCity: c.Query("from"),
	}

	trips, err := h.tripService.ListOpenTrips(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", trips, &utils.Meta{
		Count: len(trips),
	})
}

func (h *TripHandler) ListMyTrips(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	trips, err := h.tripService.ListDriverTrips(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", trips, &utils.Meta{
		Count: len(trips),
	})
}

func (h *TripHandler) ListMyCompletedTrips(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	trips, err := h.tripService.ListCompletedDriverTrips(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", trips, &utils.Meta{
		Count: len(trips),
	})
}

// DeleteTrip removes a trip and every request that points at it.
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tripID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid trip ID"})
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), auth, tripID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *TripHandler) CompleteTrip(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tripID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid trip ID"})
		return
	}

	if err := h.tripService.CompleteTrip(c.Request.Context(), auth, tripID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip completed successfully", nil)
}
