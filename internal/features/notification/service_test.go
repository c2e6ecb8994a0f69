package notification

import (
	"testing"
	"time"

	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/workflow"
)

func TestNotificationsFor(t *testing.T) {
	base := approval.Event{
		InstanceID:   "inst-1",
		WorkflowType: workflow.TypeLeaveApproval,
		Subject:      approval.SubjectRef{Type: "leave_request", ID: "leave-1"},
		RequesterID:  "emp-1",
		StepOrder:    1,
		Timestamp:    time.Now(),
	}

	t.Run("pending step notifies next approver only", func(t *testing.T) {
		event := base
		event.Decision = approval.DecisionApproved
		event.NewStatus = approval.StatusPending
		event.NextApproverID = "mgr-1"

		out := notificationsFor(event)
		if len(out) != 1 {
			t.Fatalf("got %d notifications, want 1", len(out))
		}
		if out[0].RecipientID != "mgr-1" {
			t.Errorf("recipient = %s, want mgr-1", out[0].RecipientID)
		}
	})

	t.Run("terminal outcome notifies requester", func(t *testing.T) {
		event := base
		event.Decision = approval.DecisionRejected
		event.NewStatus = approval.StatusRejected

		out := notificationsFor(event)
		if len(out) != 1 {
			t.Fatalf("got %d notifications, want 1", len(out))
		}
		if out[0].RecipientID != "emp-1" {
			t.Errorf("recipient = %s, want emp-1", out[0].RecipientID)
		}
	})

	t.Run("intermediate skip with no next approver notifies nobody", func(t *testing.T) {
		event := base
		event.Decision = approval.DecisionSkipped
		event.NewStatus = approval.StatusPending

		if out := notificationsFor(event); len(out) != 0 {
			t.Fatalf("got %d notifications, want 0", len(out))
		}
	})
}
