package handlers

import (
	"halador/internal/services"
	"halador/internal/utils"
	"halador/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.SubmitReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, validators.FormatBindingErrors(err))
		return
	}
	input.Comment = validators.SanitizeInput(input.Comment)

	review, err := h.reviewService.SubmitReview(c.Request.Context(), auth, &input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted successfully", review)
}

// ListForDriver is public: passengers check a driver's reviews before
// requesting a seat.
func (h *ReviewHandler) ListForDriver(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid driver ID"})
		return
	}

	reviews, err := h.reviewService.ListForDriver(c.Request.Context(), driverID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Count: len(reviews),
	})
}

// PassengerHistory lists the caller's completed trips annotated with
// review state, so the client knows which ones can still be rated.
func (h *ReviewHandler) PassengerHistory(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	history, err := h.reviewService.PassengerHistory(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "History retrieved successfully", history, &utils.Meta{
		Count: len(history),
	})
}
