package automation

import (
	"testing"

	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/workflow"
)

func TestAutomationRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    AutomationRule
		wantErr bool
	}{
		{
			name: "valid",
			rule: AutomationRule{Name: "log approvals", Script: `msg := "approved: " + event.instance_id`},
		},
		{
			name:    "missing name",
			rule:    AutomationRule{Script: `x := 1`},
			wantErr: true,
		},
		{
			name:    "missing script",
			rule:    AutomationRule{Name: "empty"},
			wantErr: true,
		},
		{
			name:    "script does not compile",
			rule:    AutomationRule{Name: "broken", Script: `if {`},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAutomationRuleMatches(t *testing.T) {
	event := approval.Event{
		WorkflowType: workflow.TypeLeaveApproval,
		Decision:     approval.DecisionApproved,
	}

	tests := []struct {
		name string
		rule AutomationRule
		want bool
	}{
		{"inactive never matches", AutomationRule{Active: false}, false},
		{"wildcard matches everything", AutomationRule{Active: true}, true},
		{"workflow type filter matches", AutomationRule{Active: true, WorkflowType: workflow.TypeLeaveApproval}, true},
		{"workflow type filter misses", AutomationRule{Active: true, WorkflowType: workflow.TypeSalaryChange}, false},
		{"decision filter matches", AutomationRule{Active: true, Decision: approval.DecisionApproved}, true},
		{"decision filter misses", AutomationRule{Active: true, Decision: approval.DecisionRejected}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Matches(event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
