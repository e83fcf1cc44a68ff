package handlers

import (
	"halador/internal/services"
	"halador/internal/utils"
	"halador/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile returns any user's public profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid user ID"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", profile)
}

type updateContactBody struct {
	Phone string `json:"phone" binding:"required,phone_number"`
}

func (h *ProfileHandler) UpdateContact(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var body updateContactBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.ValidationErrorResponse(c, validators.FormatBindingErrors(err))
		return
	}

	if err := h.profileService.UpdateContact(c.Request.Context(), auth, body.Phone); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Contact updated successfully", nil)
}

func (h *ProfileHandler) UpdateVehicle(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, validators.FormatBindingErrors(err))
		return
	}

	if err := h.profileService.UpdateVehicle(c.Request.Context(), auth, &input); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle updated successfully", nil)
}
