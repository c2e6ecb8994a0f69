package notification

import (
	"time"

	"go-hrm/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is one "action needed" or "outcome" message for one
// employee. The unique key (instance_id, step_order, decision,
// recipient_id) makes redelivered events idempotent.
type Notification struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	RecipientID  string                 `bson:"recipient_id" json:"recipient_id"`
	InstanceID   string                 `bson:"instance_id" json:"instance_id"`
	WorkflowType string                 `bson:"workflow_type" json:"workflow_type"`
	Subject      approval.SubjectRef    `bson:"subject" json:"subject"`
	StepOrder    int                    `bson:"step_order" json:"step_order"`
	Decision     approval.Decision      `bson:"decision" json:"decision"`
	Message      string                 `bson:"message" json:"message"`
	Read         bool                   `bson:"read" json:"read"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
}
