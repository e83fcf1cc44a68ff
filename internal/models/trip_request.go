package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// TripRequest is a passenger's claim on one seat of a trip. Status only
// ever moves pending -> accepted or pending -> rejected. The driver id
// is denormalized from the trip so the notification relay can filter
// request events per driver without a join.
type TripRequest struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TripID        primitive.ObjectID `json:"trip_id" bson:"trip_id" validate:"required"`
	DriverID      primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	PassengerID   primitive.ObjectID `json:"passenger_id" bson:"passenger_id" validate:"required"`
	PassengerName string             `json:"passenger_name" bson:"passenger_name"`
	Status        RequestStatus      `json:"status" bson:"status" default:"pending"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// DriverRequestView is what the owning driver sees in the request inbox.
// PassengerPhone is populated only after acceptance.
type DriverRequestView struct {
	TripRequest    `bson:",inline"`
	Trip           *Trip  `json:"trip" bson:"trip"`
	PassengerPhone string `json:"passenger_phone,omitempty" bson:"passenger_phone,omitempty"`
}

// PassengerRequestView is the passenger's own booking history entry,
// joined with the trip and the driver's contact info.
type PassengerRequestView struct {
	TripRequest `bson:",inline"`
	Trip        *Trip  `json:"trip" bson:"trip"`
	DriverName  string `json:"driver_name,omitempty" bson:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty" bson:"driver_phone,omitempty"`
}

func (r *TripRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
