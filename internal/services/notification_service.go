package services

import (
	"context"
	"fmt"
	"time"

	"halador/internal/models"
	"halador/pkg/logger"
	"halador/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationService is the relay between the storage change feed and
// connected sessions: request and subscription row changes become
// websocket messages into the affected users' rooms. Delivery is
// best-effort; clients keep polling the REST surface as the fallback.
type NotificationService interface {
	Run(ctx context.Context)
}

type notificationService struct {
	db     *mongo.Database
	hub    *websocket.Hub
	logger *logger.Logger
}

func NewNotificationService(db *mongo.Database, hub *websocket.Hub, log *logger.Logger) NotificationService {
	return &notificationService{
		db:     db,
		hub:    hub,
		logger: log,
	}
}

func (s *notificationService) Run(ctx context.Context) {
	go s.watchLoop(ctx, "trip_requests", s.handleRequestEvent)
	go s.watchLoop(ctx, "profiles", s.handleProfileEvent)
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	FullDocument  bson.M `bson:"fullDocument"`
	UpdateDescription struct {
		UpdatedFields bson.M `bson:"updatedFields"`
	} `bson:"updateDescription"`
}

// watchLoop keeps a change stream open on one collection, reconnecting
// with a flat backoff when the stream drops. Events that fail to decode
// are logged and skipped, never fatal.
func (s *notificationService) watchLoop(ctx context.Context, collection string, handle func(*changeEvent)) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.watch(ctx, collection, handle); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).WithField("collection", collection).Warn("change stream dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (s *notificationService) watch(ctx context.Context, collection string, handle func(*changeEvent)) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		var event changeEvent
		if err := stream.Decode(&event); err != nil {
			s.logger.WithError(err).Warn("failed to decode change event")
			continue
		}
		handle(&event)
	}

	return stream.Err()
}

func (s *notificationService) handleRequestEvent(event *changeEvent) {
	var request models.TripRequest
	raw, err := bson.Marshal(event.FullDocument)
	if err != nil {
		return
	}
	if err := bson.Unmarshal(raw, &request); err != nil {
		s.logger.WithError(err).Warn("failed to decode trip request event")
		return
	}

	switch event.OperationType {
	case "insert":
		// New request: tell the driver.
		s.hub.SendToUser(request.DriverID, websocket.Message{
			Type:      string(models.NotificationTypeRequestCreated),
			UserID:    request.DriverID,
			Timestamp: time.Now().Unix(),
			Data: map[string]interface{}{
				"request_id":     request.ID.Hex(),
				"trip_id":        request.TripID.Hex(),
				"passenger_name": request.PassengerName,
				"message":        fmt.Sprintf("¡Nueva solicitud de viaje de %s!", request.PassengerName),
			},
		})

	case "update", "replace":
		// Status moved: tell the passenger.
		var notifType models.NotificationType
		var message string
		switch request.Status {
		case models.RequestStatusAccepted:
			notifType = models.NotificationTypeRequestAccepted
			message = "¡Tu conductor aceptó el viaje!"
		case models.RequestStatusRejected:
			notifType = models.NotificationTypeRequestRejected
			message = "Lo sentimos, tu solicitud fue rechazada."
		default:
			return
		}

		s.hub.SendToUser(request.PassengerID, websocket.Message{
			Type:      string(notifType),
			UserID:    request.PassengerID,
			Timestamp: time.Now().Unix(),
			Data: map[string]interface{}{
				"request_id": request.ID.Hex(),
				"trip_id":    request.TripID.Hex(),
				"status":     string(request.Status),
				"message":    message,
			},
		})
	}
}

func (s *notificationService) handleProfileEvent(event *changeEvent) {
	if event.OperationType != "update" && event.OperationType != "replace" {
		return
	}
	if _, changed := event.UpdateDescription.UpdatedFields["subscription_status"]; !changed {
		return
	}

	var profile models.Profile
	raw, err := bson.Marshal(event.FullDocument)
	if err != nil {
		return
	}
	if err := bson.Unmarshal(raw, &profile); err != nil {
		s.logger.WithError(err).Warn("failed to decode profile event")
		return
	}

	switch profile.SubscriptionStatus {
	case models.SubscriptionActive:
		s.hub.SendToUser(profile.ID, websocket.Message{
			Type:      string(models.NotificationTypeSubscriptionActive),
			UserID:    profile.ID,
			Timestamp: time.Now().Unix(),
			Data: map[string]interface{}{
				"message": "¡Suscripción Activada!",
			},
		})

	case models.SubscriptionPending:
		// A payment claim came in: nudge the admin console.
		s.hub.SendToAdmins(websocket.Message{
			Type:      string(models.NotificationTypeSubscriptionPending),
			Timestamp: time.Now().Unix(),
			Data: map[string]interface{}{
				"user_id":   profile.ID.Hex(),
				"full_name": profile.FullName,
			},
		})
	}
}
