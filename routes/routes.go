package routes

import (
	"halador/internal/handlers"
	"halador/internal/middleware"
	"halador/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the router needs.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Trip         *handlers.TripHandler
	Request      *handlers.RequestHandler
	Review       *handlers.ReviewHandler
	Profile      *handlers.ProfileHandler
	Subscription *handlers.SubscriptionHandler
}

// Setup mounts the whole API under /api/v1.
func Setup(r *gin.RouterGroup, h *Handlers, authService services.AuthService) {
	setupAuthRoutes(r, h.Auth, authService)
	setupTripRoutes(r, h.Trip, authService)
	setupRequestRoutes(r, h.Request, authService)
	setupReviewRoutes(r, h.Review, authService)
	setupProfileRoutes(r, h.Profile, authService)
	setupSubscriptionRoutes(r, h.Subscription, authService)
}

func setupAuthRoutes(r *gin.RouterGroup, h *handlers.AuthHandler, authService services.AuthService) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	me := r.Group("/auth")
	me.Use(middleware.AuthRequired(authService))
	{
		me.GET("/me", h.Me)
	}
}

func setupTripRoutes(r *gin.RouterGroup, h *handlers.TripHandler, authService services.AuthService) {
	// The catalog is public; nothing else is.
	r.GET("/trips", h.ListOpenTrips)

	trips := r.Group("/trips")
	trips.Use(middleware.AuthRequired(authService))
	{
		trips.POST("/", h.PublishTrip)
		trips.GET("/mine", h.ListMyTrips)
		trips.GET("/mine/completed", h.ListMyCompletedTrips)
		trips.DELETE("/:id", h.DeleteTrip)
		trips.PUT("/:id/complete", h.CompleteTrip)
	}
}

func setupRequestRoutes(r *gin.RouterGroup, h *handlers.RequestHandler, authService services.AuthService) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthRequired(authService))
	{
		requests.POST("/", h.CreateRequest)
		requests.GET("/incoming", h.ListForDriver)
		requests.GET("/mine", h.ListForPassenger)
		requests.PUT("/:id/accept", h.AcceptRequest)
		requests.PUT("/:id/reject", h.RejectRequest)
	}
}

func setupReviewRoutes(r *gin.RouterGroup, h *handlers.ReviewHandler, authService services.AuthService) {
	// Driver reviews are public reading material.
	r.GET("/reviews/driver/:id", h.ListForDriver)

	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthRequired(authService))
	{
		reviews.POST("/", h.SubmitReview)
		reviews.GET("/history", h.PassengerHistory)
	}
}

func setupProfileRoutes(r *gin.RouterGroup, h *handlers.ProfileHandler, authService services.AuthService) {
	profiles := r.Group("/profiles")
	profiles.Use(middleware.AuthRequired(authService))
	{
		profiles.GET("/:id", h.GetProfile)
		profiles.PUT("/contact", h.UpdateContact)
		profiles.PUT("/vehicle", h.UpdateVehicle)
	}
}

func setupSubscriptionRoutes(r *gin.RouterGroup, h *handlers.SubscriptionHandler, authService services.AuthService) {
	subscription := r.Group("/subscription")
	subscription.Use(middleware.AuthRequired(authService))
	{
		subscription.GET("/payment-info", h.GetPaymentInfo)

		driver := subscription.Group("")
		driver.Use(middleware.DriverRequired())
		{
			driver.POST("/report-payment", h.ReportPayment)
		}
	}

	admin := r.Group("/admin/subscriptions")
	admin.Use(middleware.AuthRequired(authService), middleware.AdminRequired())
	{
		admin.GET("/pending", h.ListPendingPayments)
		admin.PUT("/:id/approve", h.ApprovePayment)
		admin.PUT("/:id/reject", h.RejectPayment)
	}
}
