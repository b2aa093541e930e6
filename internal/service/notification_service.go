package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/streetlight-service/internal/config"
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/repository"
)

// StatusNotification is the rendered message for a complaint owner.
type StatusNotification struct {
	To          string
	From        string
	ComplaintID string
	Body        string
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
	sent       func(StatusNotification)
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatusTemplate == "" {
		cfg.StatusTemplate = config.DefaultStatusTemplate
	}
	return &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
}

// RenderStatusTemplate fills {{user}}, {{complaintId}}, {{status}} and {{address}}.
func RenderStatusTemplate(template, user, complaintID, status, address string) string {
	return strings.NewReplacer(
		"{{user}}", user,
		"{{complaintId}}", complaintID,
		"{{status}}", status,
		"{{address}}", address,
	).Replace(template)
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return errors.New("unexpected payload for status change")
	}
	n.logger.Info("ComplaintStatusChanged",
		zap.String("complaint_id", event.ComplaintID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	owner, err := n.users.GetByID(ctx, payload.OwnerID)
	if err != nil {
		return err
	}
	msg := StatusNotification{
		To:          owner.Email,
		From:        n.cfg.EmailFrom,
		ComplaintID: event.ComplaintID,
		Body:        RenderStatusTemplate(n.cfg.StatusTemplate, payload.OwnerName, event.ComplaintID, string(payload.NewStatus), payload.Address),
	}
	n.sendEmailNotificationStub(ctx, msg)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, msg StatusNotification) {
	if strings.TrimSpace(msg.From) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("complaint_id", msg.ComplaintID),
		zap.String("body", msg.Body))
	if n.sent != nil {
		n.sent(msg)
	}
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
