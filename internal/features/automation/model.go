package automation

import (
	"errors"
	"time"

	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/workflow"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AutomationRule binds a script to approval events. An empty
// WorkflowType or Decision matches everything, so a rule can hook one
// precise transition or the whole event stream.
type AutomationRule struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	Name         string                `bson:"name" json:"name"`
	WorkflowType workflow.WorkflowType `bson:"workflow_type,omitempty" json:"workflow_type,omitempty"`
	Decision     approval.Decision     `bson:"decision,omitempty" json:"decision,omitempty"`
	Script       string                `bson:"script" json:"script"`
	Active       bool                  `bson:"active" json:"active"`
	CreatedAt    time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time             `bson:"updated_at" json:"updated_at"`
}

func (r *AutomationRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Script == "" {
		return errors.New("script is required")
	}
	// Compile against the same symbols scripts see at run time.
	script := tengo.NewScript([]byte(r.Script))
	script.SetImports(stdlib.GetModuleMap("fmt", "text", "times", "math"))
	_ = script.Add("event", map[string]interface{}{})
	if _, err := script.Compile(); err != nil {
		return errors.New("script does not compile: " + err.Error())
	}
	return nil
}

func (r *AutomationRule) Matches(event approval.Event) bool {
	if !r.Active {
		return false
	}
	if r.WorkflowType != "" && r.WorkflowType != event.WorkflowType {
		return false
	}
	if r.Decision != "" && r.Decision != event.Decision {
		return false
	}
	return true
}
