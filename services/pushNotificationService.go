package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const pushSendTimeout = 30 * time.Second

// messageSender is the part of the FCM client this service calls.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushNotificationService struct {
	fcmClient messageSender
	topic     string
	logger    *zap.Logger
}

type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

var pushService *PushNotificationService

// InitPushNotificationService sets up FCM topic pushes for pastoral staff
// devices. It stays disabled when no topic is configured.
func InitPushNotificationService(ctx context.Context, serviceAccountPath, topic string, logger *zap.Logger) {
	pushService = nil
	if topic == "" {
		logger.Warn("PASTORAL_PUSH_TOPIC not set; pastoral push disabled")
		return
	}

	var app *firebase.App
	var err error
	if serviceAccountPath != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	} else {
		// Application Default Credentials
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		logger.Error("failed to initialize Firebase app", zap.Error(err))
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Error("failed to get Firebase messaging client", zap.Error(err))
		return
	}

	pushService = NewPushNotificationService(client, topic, logger)
	logger.Info("push notification service initialized with FCM", zap.String("topic", topic))
}

func NewPushNotificationService(client messageSender, topic string, logger *zap.Logger) *PushNotificationService {
	return &PushNotificationService{fcmClient: client, topic: topic, logger: logger}
}

func GetPushNotificationService() *PushNotificationService {
	return pushService
}

// SendToTopic sends a notification to every device subscribed to the pastoral topic.
func (s *PushNotificationService) SendToTopic(ctx context.Context, payload NotificationPayload) error {
	if s == nil || s.fcmClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	message := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	if payload.Priority == "high" {
		message.Android = &messaging.AndroidConfig{Priority: "high"}
		message.APNS = &messaging.APNSConfig{Headers: map[string]string{"apns-priority": "10"}}
	}

	ctx, cancel := context.WithTimeout(ctx, pushSendTimeout)
	defer cancel()

	response, err := s.fcmClient.Send(ctx, message)
	if err != nil {
		s.logger.Error("FCM topic send failed", zap.String("topic", s.topic), zap.Error(err))
		return fmt.Errorf("failed to send FCM topic message: %w", err)
	}

	s.logger.Info("sent FCM topic notification", zap.String("topic", s.topic), zap.String("message_id", response))
	return nil
}
