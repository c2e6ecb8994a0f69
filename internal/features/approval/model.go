package approval

import (
	"time"

	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstanceStatus is the overall state of one approval instance.
type InstanceStatus string

const (
	StatusPending   InstanceStatus = "PENDING"
	StatusApproved  InstanceStatus = "APPROVED"
	StatusRejected  InstanceStatus = "REJECTED"
	StatusCancelled InstanceStatus = "CANCELLED"
)

func (s InstanceStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Decision is the recorded outcome of a single step.
type Decision string

const (
	DecisionApproved          Decision = "APPROVED"
	DecisionRejected          Decision = "REJECTED"
	DecisionRevisionRequested Decision = "REVISION_REQUESTED"
	DecisionSkipped           Decision = "SKIPPED"
	DecisionAutoApproved      Decision = "AUTO_APPROVED"
	DecisionCancelled         Decision = "CANCELLED"

	// DecisionSubmitted appears only on events, never on step outcomes:
	// it announces a freshly opened instance to its first approver.
	DecisionSubmitted Decision = "SUBMITTED"
)

// SubjectRef is the weak reference to the domain entity under approval.
// The engine never holds a pointer into domain state.
type SubjectRef struct {
	Type string `bson:"type" json:"type"`
	ID   string `bson:"id" json:"id"`
}

// StepOutcome records what happened at one step. Exactly one outcome
// per step, written when the step resolves.
type StepOutcome struct {
	Decision  Decision  `bson:"decision" json:"decision"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // empty for skips and auto-approvals
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ResolvedStep is a step template frozen for one instance, with its
// approver already concrete. Never re-resolved after materialization:
// org-chart changes mid-flight do not move an assigned step.
type ResolvedStep struct {
	Order                 int                         `bson:"order" json:"order"`
	Name                  string                      `bson:"name" json:"name"`
	Approver              *directory.ApproverIdentity `bson:"approver,omitempty" json:"approver,omitempty"`
	PreSkipped            bool                        `bson:"pre_skipped" json:"pre_skipped"`
	SkipReason            string                      `bson:"skip_reason,omitempty" json:"skip_reason,omitempty"`
	AutoApproveAfterHours *int                        `bson:"auto_approve_after_hours,omitempty" json:"auto_approve_after_hours,omitempty"`
	CanSkip               bool                        `bson:"can_skip" json:"can_skip"`
	Outcome               *StepOutcome                `bson:"outcome,omitempty" json:"outcome,omitempty"`
}

// ApprovalInstance is one subject's progress through a materialized
// chain. Version backs the optimistic concurrency check: every mutation
// is conditioned on the version it read.
type ApprovalInstance struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	WorkflowType  workflow.WorkflowType `bson:"workflow_type" json:"workflow_type"`
	RuleID        primitive.ObjectID    `bson:"rule_id" json:"rule_id"`
	Subject       SubjectRef            `bson:"subject" json:"subject"`
	RequesterID   string                `bson:"requester_id" json:"requester_id"`
	Steps         []ResolvedStep        `bson:"steps" json:"steps"`
	CurrentStep   int                   `bson:"current_step" json:"current_step"` // index into Steps
	Status        InstanceStatus        `bson:"status" json:"status"`
	Version       int64                 `bson:"version" json:"version"`
	StepEnteredAt time.Time             `bson:"step_entered_at" json:"step_entered_at"`
	CreatedAt     time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at" json:"updated_at"`
	CompletedAt   *time.Time            `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Event is emitted after each committed transition. Delivery is
// at-least-once; consumers de-duplicate by (InstanceID, StepOrder).
type Event struct {
	InstanceID     string                `bson:"instance_id" json:"instance_id"`
	WorkflowType   workflow.WorkflowType `bson:"workflow_type" json:"workflow_type"`
	Subject        SubjectRef            `bson:"subject" json:"subject"`
	RequesterID    string                `bson:"requester_id" json:"requester_id"`
	StepOrder      int                   `bson:"step_order" json:"step_order"`
	Decision       Decision              `bson:"decision" json:"decision"`
	NewStatus      InstanceStatus        `bson:"new_status" json:"new_status"`
	NextApproverID string                `bson:"next_approver_id,omitempty" json:"next_approver_id,omitempty"`
	Timestamp      time.Time             `bson:"timestamp" json:"timestamp"`
}

// EventSink receives events after the state transition commits. The
// notification feature implements it; wiring happens in main.
type EventSink interface {
	Publish(event Event)
}
