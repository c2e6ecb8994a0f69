package workflow

import (
	"errors"
	"fmt"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/directory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkflowType is the category of business process a rule governs.
type WorkflowType string

const (
	TypeLeaveApproval WorkflowType = "LEAVE_APPROVAL"
	TypeSalaryChange  WorkflowType = "SALARY_CHANGE"
	TypeGoalApproval  WorkflowType = "GOAL_APPROVAL"
	TypeProfileChange WorkflowType = "PROFILE_CHANGE"
	TypeOvertime      WorkflowType = "OVERTIME_APPROVAL"
	TypeExpense       WorkflowType = "EXPENSE_APPROVAL"
)

// StepTemplate is one position in a rule's chain, before any subject
// is known.
type StepTemplate struct {
	Order                 int                    `bson:"order" json:"order"` // 1-based, contiguous
	Name                  string                 `bson:"name" json:"name"`
	Approver              directory.ApproverSpec `bson:"approver" json:"approver"`
	AutoApproveAfterHours *int                   `bson:"auto_approve_after_hours,omitempty" json:"auto_approve_after_hours,omitempty"`
	CanSkip               bool                   `bson:"can_skip" json:"can_skip"`
}

// WorkflowRule is a named policy for one workflow type. Instances
// snapshot its chain at materialization, so editing a rule never
// touches approvals already in flight.
type WorkflowRule struct {
	ID           primitive.ObjectID            `bson:"_id,omitempty" json:"id"`
	WorkflowType WorkflowType                  `bson:"workflow_type" json:"workflow_type"`
	Name         string                        `bson:"name" json:"name"`
	Active       bool                          `bson:"active" json:"active"`
	Conditions   []common_models.RuleCondition `bson:"conditions" json:"conditions"`
	Steps        []StepTemplate                `bson:"steps" json:"steps"`
	CreatedAt    time.Time                     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time                     `bson:"updated_at" json:"updated_at"`
}

// Validate enforces the save-time invariants on a rule and its steps.
func (r *WorkflowRule) Validate() error {
	if r.WorkflowType == "" {
		return errors.New("workflow type is required")
	}
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if len(r.Steps) == 0 {
		return errors.New("a rule needs at least one step")
	}

	for i, step := range r.Steps {
		if step.Order != i+1 {
			return fmt.Errorf("step orders must be contiguous starting at 1: step %d has order %d", i+1, step.Order)
		}
		if err := step.Approver.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", step.Order, err)
		}
		if step.AutoApproveAfterHours != nil && *step.AutoApproveAfterHours <= 0 {
			return fmt.Errorf("step %d: auto-approve timeout must be positive", step.Order)
		}
	}
	return nil
}
