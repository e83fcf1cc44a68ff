package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripStatus string

const (
	TripStatusOpen      TripStatus = "open"
	TripStatusFull      TripStatus = "full"
	TripStatusCancelled TripStatus = "cancelled"
	TripStatusCompleted TripStatus = "completed"
)

// Trip feature tags offered by the driver (music, ac, pets, packages,
// no smoking). Free-form, the client renders known ones with icons.
const (
	FeatureMusic     = "music"
	FeatureAC        = "ac"
	FeaturePets      = "pets"
	FeaturePackages  = "packages"
	FeatureNoSmoking = "no_smoking"
)

type Trip struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID       primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	FromLoc        string             `json:"from_loc" bson:"from_loc" validate:"required"`
	ToLoc          string             `json:"to_loc" bson:"to_loc" validate:"required"`
	Date           string             `json:"date" bson:"date" validate:"required"` // YYYY-MM-DD
	Time           string             `json:"time" bson:"time" validate:"required"` // HH:MM
	Price          float64            `json:"price" bson:"price" validate:"required,gt=0"`
	SeatsTotal     int                `json:"seats_total" bson:"seats_total" validate:"required,min=1"`
	SeatsAvailable int                `json:"seats_available" bson:"seats_available"`
	Status         TripStatus         `json:"status" bson:"status" default:"open"`
	Features       []string           `json:"features" bson:"features"`
	DriverLat      *float64           `json:"driver_lat" bson:"driver_lat"`
	DriverLng      *float64           `json:"driver_lng" bson:"driver_lng"`
	IdempotencyKey string             `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// TripWithDriver is the listing shape for the passenger search surface:
// the trip plus the public driver summary.
type TripWithDriver struct {
	Trip   `bson:",inline"`
	Driver *DriverSummary `json:"driver_profile" bson:"driver_profile"`
}

// IsBookable reports whether passengers may still queue requests.
func (t *Trip) IsBookable() bool {
	return t.Status == TripStatusOpen
}
