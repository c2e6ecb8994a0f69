package notification

import (
	"context"
	"fmt"

	"go-hrm/internal/features/approval"

	"go.uber.org/zap"
)

type NotificationService interface {
	approval.EventSink
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, recipientID string) error
}

// NotificationServiceImpl fans approval events into per-employee
// notifications. Delivery runs on a worker goroutine so publishing
// never blocks a state transition.
type NotificationServiceImpl struct {
	Repo      NotificationRepository
	Logger    *zap.Logger
	eventChan chan approval.Event
}

func NewNotificationService(repo NotificationRepository, logger *zap.Logger) NotificationService {
	service := &NotificationServiceImpl{
		Repo:      repo,
		Logger:    logger,
		eventChan: make(chan approval.Event, 1000),
	}

	go service.processEvents()

	return service
}

// Publish drops the event rather than blocking when the buffer is
// full; upstream delivery is at-least-once, so the next retry or the
// scheduler sweep re-emits it.
func (s *NotificationServiceImpl) Publish(event approval.Event) {
	select {
	case s.eventChan <- event:
	default:
		s.Logger.Warn("notification buffer full, dropping event",
			zap.String("instance_id", event.InstanceID),
			zap.Int("step_order", event.StepOrder),
		)
	}
}

func (s *NotificationServiceImpl) processEvents() {
	for event := range s.eventChan {
		for _, n := range notificationsFor(event) {
			if err := s.Repo.Upsert(context.Background(), n); err != nil {
				s.Logger.Error("failed to persist notification",
					zap.String("instance_id", n.InstanceID),
					zap.String("recipient_id", n.RecipientID),
					zap.Error(err),
				)
			}
		}
	}
}

// notificationsFor maps one event onto its recipients: the next
// approver learns the instance is waiting on them, the requester
// learns about every terminal outcome.
func notificationsFor(event approval.Event) []Notification {
	var out []Notification

	if event.NextApproverID != "" {
		out = append(out, Notification{
			RecipientID:  event.NextApproverID,
			InstanceID:   event.InstanceID,
			WorkflowType: string(event.WorkflowType),
			Subject:      event.Subject,
			StepOrder:    event.StepOrder,
			Decision:     event.Decision,
			Message:      fmt.Sprintf("%s %s/%s is waiting for your approval", event.WorkflowType, event.Subject.Type, event.Subject.ID),
		})
	}

	if event.NewStatus.IsTerminal() && event.RequesterID != "" {
		out = append(out, Notification{
			RecipientID:  event.RequesterID,
			InstanceID:   event.InstanceID,
			WorkflowType: string(event.WorkflowType),
			Subject:      event.Subject,
			StepOrder:    event.StepOrder,
			Decision:     event.Decision,
			Message:      fmt.Sprintf("Your %s request %s/%s is now %s", event.WorkflowType, event.Subject.Type, event.Subject.ID, event.NewStatus),
		})
	}

	return out
}

func (s *NotificationServiceImpl) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error) {
	return s.Repo.ListByRecipient(ctx, recipientID, unreadOnly)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id string, recipientID string) error {
	return s.Repo.MarkRead(ctx, id, recipientID)
}
