package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the login credentials. It is deliberately separate from
// Profile: the profile can be lost and regenerated (self-heal) without
// touching credentials, mirroring how the identity provider and the
// profile table were decoupled.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	FullName     string             `json:"full_name" bson:"full_name" validate:"required"`
	Role         UserRole           `json:"role" bson:"role" validate:"required"`
	LastLoginAt  *time.Time         `json:"last_login_at" bson:"last_login_at"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
