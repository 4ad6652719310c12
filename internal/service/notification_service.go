package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/notify"
	"github.com/spec-kit/console-client/internal/observability"
)

// NotificationService turns core events into queued notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      *notify.Queue
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue *notify.Queue, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     observability.OrNop(logger),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || n.queue == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLoggedIn, n.handleLoggedIn)
	n.dispatcher.Subscribe(events.EventLoggedOut, n.handleLoggedOut)
	n.dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired)
	n.dispatcher.Subscribe(events.EventAccessDenied, n.handleAccessDenied)
	n.dispatcher.Subscribe(events.EventAdminPrompt, n.handleAdminPrompt)
	n.dispatcher.Subscribe(events.EventRedirected, n.handleRedirected)
}

func (n *NotificationService) handleLoggedIn(_ context.Context, event events.Event) error {
	n.logger.Info("LoggedIn", zap.Any("payload", event.Payload))
	n.queue.Push(notify.Notification{Level: notify.LevelSuccess, Message: "Signed in"})
	return nil
}

// handleLoggedOut only queues user-initiated sign-outs; expiry has its own notification.
func (n *NotificationService) handleLoggedOut(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.LoggedOutPayload)
	n.logger.Info("LoggedOut", zap.String("event_id", event.ID), zap.String("reason", payload.Reason))
	if payload.Reason == events.LogoutReasonUser {
		n.queue.Push(notify.Notification{Level: notify.LevelInfo, Message: "Signed out"})
	}
	return nil
}

func (n *NotificationService) handleSessionExpired(_ context.Context, event events.Event) error {
	n.logger.Warn("SessionExpired", zap.Any("payload", event.Payload))
	n.queue.Push(notify.Notification{Level: notify.LevelWarning, Message: "Your session has expired. Please sign in again."})
	return nil
}

func (n *NotificationService) handleAccessDenied(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccessDeniedPayload)
	if !ok {
		return fmt.Errorf("access denied event %s: unexpected payload %T", event.ID, event.Payload)
	}
	n.logger.Warn("AccessDenied", zap.String("route", payload.Route), zap.String("path", payload.Path))
	n.queue.Push(notify.Notification{Level: notify.LevelError, Message: payload.Message})
	return nil
}

func (n *NotificationService) handleAdminPrompt(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AdminPromptPayload)
	if !ok {
		return fmt.Errorf("admin prompt event %s: unexpected payload %T", event.ID, event.Payload)
	}
	n.logger.Warn("AdminPrompt", zap.String("prompt_id", payload.PromptID), zap.String("path", payload.Path))
	n.queue.Push(notify.Notification{
		Level:    notify.LevelWarning,
		Message:  payload.Message,
		Duration: -1,
		Prompt:   &notify.Prompt{ID: payload.PromptID, Choices: payload.Choices},
	})
	return nil
}

func (n *NotificationService) handleRedirected(_ context.Context, event events.Event) error {
	n.logger.Debug("Redirected", zap.Any("payload", event.Payload))
	return nil
}
