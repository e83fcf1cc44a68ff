package services

import (
	"halador/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthContext carries the authenticated actor into every service call.
// It is built once per request from the verified token and passed
// explicitly; no service reads session state from anywhere ambient.
type AuthContext struct {
	UserID   primitive.ObjectID
	Role     models.UserRole
	FullName string
}

func (a *AuthContext) IsAuthenticated() bool {
	return a != nil && !a.UserID.IsZero()
}

func (a *AuthContext) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == models.RoleAdmin
}

func (a *AuthContext) IsDriver() bool {
	return a.IsAuthenticated() && a.Role == models.RoleDriver
}
