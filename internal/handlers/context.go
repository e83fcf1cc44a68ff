package handlers

import (
	"halador/internal/models"
	"halador/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// authFromContext rebuilds the actor from the values the auth
// middleware stored on the gin context. Services only ever see this
// struct, never the gin context itself.
func authFromContext(c *gin.Context) *services.AuthContext {
	userID, exists := c.Get("user_id")
	if !exists {
		return nil
	}

	objectID, ok := userID.(primitive.ObjectID)
	if !ok {
		return nil
	}

	auth := &services.AuthContext{UserID: objectID}

	if role, exists := c.Get("user_role"); exists {
		if roleStr, ok := role.(string); ok {
			auth.Role = models.UserRole(roleStr)
		}
	}

	if name, exists := c.Get("user_name"); exists {
		if nameStr, ok := name.(string); ok {
			auth.FullName = nameStr
		}
	}

	return auth
}
