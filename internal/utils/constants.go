package utils

import "time"

// Application Constants
const (
	AppName    = "Halador"
	AppVersion = "1.0.0"

	// Defaults
	DefaultLanguage = "es"
	DefaultCurrency = "PEN"
	DefaultTimeZone = "America/Lima"

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8

	// Trip publishing
	PublishTimeout    = 10 * time.Second
	MinTripPrice      = 0.01 // price must be strictly positive
	MinTripSeats      = 1
	MaxTripSeats      = 6
	TripDateFormat    = "2006-01-02"
	TripTimeFormat    = "15:04"
	IdempotencyKeyTTL = 24 * time.Hour

	// Catalog freshness: clients poll trips every ~10s and requests
	// every ~5s; the server caches the open-trip listing for less than
	// one poll interval.
	TripPollInterval     = 10 * time.Second
	RequestPollInterval  = 5 * time.Second
	OpenTripsCacheMaxAge = 5 * time.Second

	// Subscription gate
	SubscriptionPeriodDays = 30
	SubscriptionPricePEN   = 15.00

	// Reviews
	MinRating = 1
	MaxRating = 5

	// Status strings for API envelopes
	StatusSuccess = "success"
	StatusError   = "error"

	// Common error messages
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"
)
