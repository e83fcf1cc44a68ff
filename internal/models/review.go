package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a one-shot post-trip rating of the driver by a passenger.
// At most one per (trip, reviewer), immutable once written.
type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TripID     primitive.ObjectID `json:"trip_id" bson:"trip_id" validate:"required"`
	ReviewerID primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id" validate:"required"`
	RevieweeID primitive.ObjectID `json:"reviewee_id" bson:"reviewee_id" validate:"required"`
	Rating     int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment    string             `json:"comment" bson:"comment"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// RatingSummary is the aggregate written back onto the reviewee profile
// after each submission.
type RatingSummary struct {
	Average float64 `bson:"avg_rating"`
	Count   int     `bson:"rating_count"`
}
