package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string
type SubscriptionStatus string

const (
	RolePassenger UserRole = "passenger"
	RoleDriver    UserRole = "driver"
	RoleAdmin     UserRole = "admin"

	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
)

// Profile is the identity and capability record for every user. The role
// is fixed at signup and never changes; subscription fields move only
// through the subscription gate.
type Profile struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FullName            string             `json:"full_name" bson:"full_name" validate:"required"`
	AvatarURL           string             `json:"avatar_url" bson:"avatar_url"`
	Role                UserRole           `json:"role" bson:"role" validate:"required"`
	Phone               string             `json:"phone" bson:"phone"`
	IsVerified          bool               `json:"is_verified" bson:"is_verified" default:"false"`
	PaymentVerified     bool               `json:"payment_verified" bson:"payment_verified" default:"false"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status" bson:"subscription_status" default:"inactive"`
	SubscriptionEndDate *time.Time         `json:"subscription_end_date" bson:"subscription_end_date"`
	CarBrand            string             `json:"car_brand" bson:"car_brand"`
	CarModel            string             `json:"car_model" bson:"car_model"`
	CarColor            string             `json:"car_color" bson:"car_color"`
	CarPlate            string             `json:"car_plate" bson:"car_plate"`
	RatingAverage       float64            `json:"rating_average" bson:"rating_average" default:"0"`
	RatingCount         int                `json:"rating_count" bson:"rating_count" default:"0"`
	TripsCompleted      int                `json:"trips_completed" bson:"trips_completed" default:"0"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

// DriverSummary is the public slice of a driver profile joined into
// trip listings. Pending requesters never see more than this.
type DriverSummary struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	FullName       string             `json:"full_name" bson:"full_name"`
	AvatarURL      string             `json:"avatar_url" bson:"avatar_url"`
	CarBrand       string             `json:"car_brand" bson:"car_brand"`
	CarModel       string             `json:"car_model" bson:"car_model"`
	CarPlate       string             `json:"car_plate" bson:"car_plate"`
	RatingAverage  float64            `json:"rating_average" bson:"rating_average"`
	RatingCount    int                `json:"rating_count" bson:"rating_count"`
	TripsCompleted int                `json:"trips_completed" bson:"trips_completed"`
}

// HasActiveSubscription reports whether the profile may publish trips
// right now. Expiry is checked lazily here, there is no background job.
func (p *Profile) HasActiveSubscription(now time.Time) bool {
	if p.SubscriptionStatus != SubscriptionActive {
		return false
	}
	if p.SubscriptionEndDate == nil {
		return false
	}
	return p.SubscriptionEndDate.After(now)
}

func (p *Profile) IsDriver() bool {
	return p.Role == RoleDriver
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
