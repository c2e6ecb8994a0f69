package approval

import (
	"context"
	"errors"
	"testing"

	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/workflow"
)

// fakeDirectory resolves specs from a fixed table. A missing entry
// means the approver cannot be resolved, mirroring the real service's
// nil-identity contract.
type fakeDirectory struct {
	identities map[string]*directory.ApproverIdentity
}

func specKey(spec directory.ApproverSpec) string {
	return string(spec.Type) + "/" + spec.RoleKey + "/" + spec.EmployeeID
}

func (f *fakeDirectory) ResolveApprover(ctx context.Context, subjectEmployeeID string, spec directory.ApproverSpec) (*directory.ApproverIdentity, error) {
	identity, ok := f.identities[specKey(spec)]
	if !ok {
		return nil, nil
	}
	// Value copy, like the real resolver.
	cp := *identity
	return &cp, nil
}

func hoursPtr(h int) *int { return &h }

func identityFor(id, name string) *directory.ApproverIdentity {
	return &directory.ApproverIdentity{EmployeeID: id, Name: name, Email: name + "@example.com"}
}

func TestMaterializeChainResolvesAllSteps(t *testing.T) {
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.DirectManager()):        identityFor("mgr-1", "Manager"),
		specKey(directory.SpecificRole("hr_ops")): identityFor("hr-1", "HR Ops"),
	}}
	seq := NewStepSequencer(dir)

	rule := &workflow.WorkflowRule{
		WorkflowType: workflow.TypeLeaveApproval,
		Name:         "standard leave",
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), AutoApproveAfterHours: hoursPtr(48)},
			{Order: 2, Name: "HR review", Approver: directory.SpecificRole("hr_ops")},
		},
	}

	steps, err := seq.MaterializeChain(context.Background(), rule, "emp-1")
	if err != nil {
		t.Fatalf("MaterializeChain: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Approver == nil || steps[0].Approver.EmployeeID != "mgr-1" {
		t.Errorf("step 1 approver = %+v, want mgr-1", steps[0].Approver)
	}
	if steps[0].AutoApproveAfterHours == nil || *steps[0].AutoApproveAfterHours != 48 {
		t.Errorf("step 1 timeout not carried over")
	}
	if steps[1].Approver == nil || steps[1].Approver.EmployeeID != "hr-1" {
		t.Errorf("step 2 approver = %+v, want hr-1", steps[1].Approver)
	}
	for _, s := range steps {
		if s.PreSkipped {
			t.Errorf("step %d unexpectedly pre-skipped", s.Order)
		}
	}
}

func TestMaterializeChainPreSkipsUnresolvableOptionalStep(t *testing.T) {
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.DirectManager()): identityFor("mgr-1", "Manager"),
	}}
	seq := NewStepSequencer(dir)

	rule := &workflow.WorkflowRule{
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager()},
			{Order: 2, Name: "Dept head sign-off", Approver: directory.DepartmentHead(), CanSkip: true},
		},
	}

	steps, err := seq.MaterializeChain(context.Background(), rule, "emp-1")
	if err != nil {
		t.Fatalf("MaterializeChain: %v", err)
	}
	if !steps[1].PreSkipped {
		t.Fatal("optional unresolvable step should be pre-skipped")
	}
	if steps[1].Approver != nil {
		t.Errorf("pre-skipped step should have no approver, got %+v", steps[1].Approver)
	}
	if steps[1].SkipReason == "" {
		t.Error("pre-skipped step should record a skip reason")
	}
}

func TestMaterializeChainFailsOnRequiredUnresolvableStep(t *testing.T) {
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.DirectManager()): identityFor("mgr-1", "Manager"),
	}}
	seq := NewStepSequencer(dir)

	rule := &workflow.WorkflowRule{
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager()},
			{Order: 2, Name: "CFO sign-off", Approver: directory.SpecificEmployee("cfo-gone")},
		},
	}

	steps, err := seq.MaterializeChain(context.Background(), rule, "emp-1")
	if steps != nil {
		t.Fatal("no partial chain should survive a failed materialization")
	}
	if !errors.Is(err, ErrUnresolvableApprover) {
		t.Fatalf("error = %v, want ErrUnresolvableApprover", err)
	}
	var unresolvable *UnresolvableApproverError
	if !errors.As(err, &unresolvable) {
		t.Fatalf("error %T does not name the step", err)
	}
	if unresolvable.StepOrder != 2 || unresolvable.StepName != "CFO sign-off" {
		t.Errorf("error names step %d %q", unresolvable.StepOrder, unresolvable.StepName)
	}
}

func TestMaterializedChainIsFrozen(t *testing.T) {
	original := identityFor("mgr-1", "Manager")
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.DirectManager()): original,
	}}
	seq := NewStepSequencer(dir)

	rule := &workflow.WorkflowRule{
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager()},
		},
	}

	steps, err := seq.MaterializeChain(context.Background(), rule, "emp-1")
	if err != nil {
		t.Fatalf("MaterializeChain: %v", err)
	}

	// An org-chart change after materialization must not move the step.
	original.EmployeeID = "mgr-2"
	if steps[0].Approver.EmployeeID != "mgr-1" {
		t.Errorf("resolved approver followed a later directory change: %s", steps[0].Approver.EmployeeID)
	}
}
