package workflow

import (
	"testing"

	"go-hrm/internal/features/directory"
)

func intPtr(i int) *int { return &i }

func TestWorkflowRuleValidate(t *testing.T) {
	valid := WorkflowRule{
		WorkflowType: TypeLeaveApproval,
		Name:         "standard leave",
		Steps: []StepTemplate{
			{Order: 1, Name: "Manager", Approver: directory.DirectManager()},
			{Order: 2, Name: "HR", Approver: directory.HRAdmin(), AutoApproveAfterHours: intPtr(24), CanSkip: true},
		},
	}

	tests := []struct {
		name    string
		mutate  func(r *WorkflowRule)
		wantErr bool
	}{
		{"valid rule", func(r *WorkflowRule) {}, false},
		{"missing type", func(r *WorkflowRule) { r.WorkflowType = "" }, true},
		{"missing name", func(r *WorkflowRule) { r.Name = "" }, true},
		{"no steps", func(r *WorkflowRule) { r.Steps = nil }, true},
		{"gap in order", func(r *WorkflowRule) { r.Steps[1].Order = 3 }, true},
		{"order not starting at 1", func(r *WorkflowRule) { r.Steps[0].Order = 0; r.Steps[1].Order = 1 }, true},
		{"specific employee without reference", func(r *WorkflowRule) {
			r.Steps[0].Approver = directory.ApproverSpec{Type: directory.ApproverSpecificEmployee}
		}, true},
		{"manager with stray role key", func(r *WorkflowRule) {
			r.Steps[0].Approver = directory.ApproverSpec{Type: directory.ApproverDirectManager, RoleKey: "x"}
		}, true},
		{"zero timeout", func(r *WorkflowRule) { r.Steps[1].AutoApproveAfterHours = intPtr(0) }, true},
		{"negative timeout", func(r *WorkflowRule) { r.Steps[1].AutoApproveAfterHours = intPtr(-5) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := valid
			rule.Steps = make([]StepTemplate, len(valid.Steps))
			copy(rule.Steps, valid.Steps)
			tt.mutate(&rule)

			err := rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
