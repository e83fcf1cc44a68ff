package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeRequestCreated      NotificationType = "request_created"
	NotificationTypeRequestAccepted     NotificationType = "request_accepted"
	NotificationTypeRequestRejected     NotificationType = "request_rejected"
	NotificationTypeSubscriptionActive  NotificationType = "subscription_active"
	NotificationTypeSubscriptionPending NotificationType = "subscription_pending"
)

// Notification is the payload the relay pushes over the websocket hub.
// It is transient, nothing is persisted: a session that misses an event
// catches up on its next poll.
type Notification struct {
	Type    NotificationType       `json:"type"`
	UserID  primitive.ObjectID     `json:"user_id"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
