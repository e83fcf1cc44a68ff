package handlers

import (
	"halador/internal/config"
	"halador/internal/services"
	"halador/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
	subscriptionConfig  *config.SubscriptionConfig
}

func NewSubscriptionHandler(subscriptionService services.SubscriptionService, cfg *config.SubscriptionConfig) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		subscriptionConfig:  cfg,
	}
}

// GetPaymentInfo shows the driver where to send the transfer. Payments
// happen entirely outside the app.
func (h *SubscriptionHandler) GetPaymentInfo(c *gin.Context) {
	utils.SuccessResponse(c, "Payment info retrieved successfully", gin.H{
		"price_pen":   h.subscriptionConfig.PricePEN,
		"period_days": h.subscriptionConfig.PeriodDays,
		"yape_number": h.subscriptionConfig.YapeNumber,
		"plin_number": h.subscriptionConfig.PlinNumber,
		"holder_name": h.subscriptionConfig.HolderName,
	})
}

// ReportPayment is the driver claiming "I paid"; the subscription moves
// to pending until an admin verifies the transfer.
func (h *SubscriptionHandler) ReportPayment(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.subscriptionService.ReportPayment(c.Request.Context(), auth); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment reported successfully", nil)
}

func (h *SubscriptionHandler) ApprovePayment(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid user ID"})
		return
	}

	if err := h.subscriptionService.ApprovePayment(c.Request.Context(), auth, userID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment approved successfully", nil)
}

func (h *SubscriptionHandler) RejectPayment(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"id": "Invalid user ID"})
		return
	}

	if err := h.subscriptionService.RejectPayment(c.Request.Context(), auth, userID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment rejected successfully", nil)
}

func (h *SubscriptionHandler) ListPendingPayments(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profiles, err := h.subscriptionService.ListPendingPayments(c.Request.Context(), auth)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pending payments retrieved successfully", profiles, &utils.Meta{
		Count: len(profiles),
	})
}
