package handlers

import (
	"halador/internal/services"
	"halador/internal/utils"
	"halador/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestHandler struct {
	requestService services.RequestService
}

func NewRequestHandler(requestService services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

type createRequestBody struct {
	TripID string `json:"trip_id" binding:"required,object_id"`
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ValidationErrorResponse(c, validators.FormatBindingErrors(err))
		return
	}

	tripID, err := primitive.ObjectIDFromHex(body.TripID)
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"trip_id": "Invalid trip ID"})
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), auth, tripID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Request submitted successfully", request)
}

// AcceptRequest moves a pending request to accepted and takes one seat.
// When no seats remain the caller gets a conflict and the request stays
// pending.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid request ID"})
		return
	}

	if err := h.requestService.AcceptRequest(c.Request.Context(), auth, requestID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Request accepted successfully", nil)
}

func (h *RequestHandler) RejectRequest(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid request ID"})
		return
	}

	if err := h.requestService.RejectRequest(c.Request.Context(), auth, requestID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Request rejected successfully", nil)
}

// ListForDriver shows incoming requests across the driver's trips.
// Passenger phone numbers only appear on accepted rows.
func (h *RequestHandler) ListForDriver(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requests, err := h.requestService.ListForDriver(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Requests retrieved successfully", requests, &utils.Meta{
		Count: len(requests),
	})
}

func (h *RequestHandler) ListForPassenger(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requests, err := h.requestService.ListForPassenger(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Requests retrieved successfully", requests, &utils.Meta{
		Count: len(requests),
	})
}
