package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeApprovalRepo is an in-memory store with the same compare-and-swap
// contract as the Mongo repository. Reads hand out copies so concurrent
// callers race on the store, not on shared structs.
type fakeApprovalRepo struct {
	mu        sync.Mutex
	instances map[string]*ApprovalInstance
	writes    int
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{instances: make(map[string]*ApprovalInstance)}
}

func cloneInstance(in *ApprovalInstance) *ApprovalInstance {
	cp := *in
	cp.Steps = make([]ResolvedStep, len(in.Steps))
	for i, s := range in.Steps {
		cp.Steps[i] = s
		if s.Approver != nil {
			a := *s.Approver
			cp.Steps[i].Approver = &a
		}
		if s.Outcome != nil {
			o := *s.Outcome
			cp.Steps[i].Outcome = &o
		}
	}
	return &cp
}

func (f *fakeApprovalRepo) Create(ctx context.Context, instance *ApprovalInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances[instance.ID.Hex()] = cloneInstance(instance)
	return nil
}

func (f *fakeApprovalRepo) GetByID(ctx context.Context, id string) (*ApprovalInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.instances[id]
	if !ok {
		return nil, nil
	}
	return cloneInstance(stored), nil
}

func (f *fakeApprovalRepo) FindBySubject(ctx context.Context, subjectType, subjectID string) ([]ApprovalInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ApprovalInstance
	for _, inst := range f.instances {
		if inst.Subject.Type == subjectType && inst.Subject.ID == subjectID {
			out = append(out, *cloneInstance(inst))
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) FindPendingByApprover(ctx context.Context, approverID string) ([]ApprovalInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ApprovalInstance
	for _, inst := range f.instances {
		if inst.Status != StatusPending {
			continue
		}
		approver := inst.Steps[inst.CurrentStep].Approver
		if approver != nil && approver.EmployeeID == approverID {
			out = append(out, *cloneInstance(inst))
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) FindPendingWithTimeout(ctx context.Context) ([]ApprovalInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ApprovalInstance
	for _, inst := range f.instances {
		if inst.Status == StatusPending && inst.Steps[inst.CurrentStep].AutoApproveAfterHours != nil {
			out = append(out, *cloneInstance(inst))
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) UpdateWithVersion(ctx context.Context, instance *ApprovalInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.instances[instance.ID.Hex()]
	if !ok || stored.Version != instance.Version {
		return ErrVersionConflict
	}
	instance.Version++
	instance.UpdatedAt = time.Now()
	f.instances[instance.ID.Hex()] = cloneInstance(instance)
	f.writes++
	return nil
}

func (f *fakeApprovalRepo) FindFinalizedSince(ctx context.Context, since time.Time) ([]ApprovalInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ApprovalInstance
	for _, inst := range f.instances {
		if inst.Status.IsTerminal() && inst.CompletedAt != nil && !inst.CompletedAt.Before(since) {
			out = append(out, *cloneInstance(inst))
		}
	}
	return out, nil
}

type fakeSelector struct {
	rule *workflow.WorkflowRule
	err  error
}

func (f *fakeSelector) SelectRule(ctx context.Context, workflowType workflow.WorkflowType, ruleCtx workflow.RuleContext) (*workflow.WorkflowRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rule, nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeSink) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeSink) all() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	repo    *fakeApprovalRepo
	sink    *fakeSink
	service ApprovalService
}

// newFixture wires the service over a three-step rule: manager, an
// optional dept head (resolvable unless removed from dir), HR.
func newFixture(t *testing.T, dir *fakeDirectory) *fixture {
	t.Helper()
	rule := &workflow.WorkflowRule{
		ID:           primitive.NewObjectID(),
		WorkflowType: workflow.TypeLeaveApproval,
		Name:         "three step leave",
		Active:       true,
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager()},
			{Order: 2, Name: "Dept head sign-off", Approver: directory.DepartmentHead(), CanSkip: true},
			{Order: 3, Name: "HR review", Approver: directory.SpecificRole("hr_ops")},
		},
		CreatedAt: time.Now(),
	}

	repo := newFakeApprovalRepo()
	sink := &fakeSink{}
	service := NewApprovalService(
		repo,
		&fakeSelector{rule: rule},
		NewStepSequencer(dir),
		noopAudit{},
		sink,
		zap.NewNop(),
	)
	return &fixture{repo: repo, sink: sink, service: service}
}

func fullDirectory() *fakeDirectory {
	return &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.DirectManager()):        identityFor("mgr-1", "Manager"),
		specKey(directory.DepartmentHead()):       identityFor("head-1", "Dept Head"),
		specKey(directory.SpecificRole("hr_ops")): identityFor("hr-1", "HR Ops"),
	}}
}

func start(t *testing.T, f *fixture) *ApprovalInstance {
	t.Helper()
	instance, err := f.service.StartApproval(context.Background(), workflow.TypeLeaveApproval,
		SubjectRef{Type: "leave_request", ID: "leave-42"}, "emp-1", nil)
	if err != nil {
		t.Fatalf("StartApproval: %v", err)
	}
	return instance
}

func TestStartApproval(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	if instance.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING", instance.Status)
	}
	if instance.CurrentStep != 0 {
		t.Errorf("current step = %d, want 0", instance.CurrentStep)
	}
	if instance.Version != 1 {
		t.Errorf("version = %d, want 1", instance.Version)
	}

	events := f.sink.all()
	if len(events) != 1 || events[0].Decision != DecisionSubmitted {
		t.Fatalf("events = %+v, want single SUBMITTED", events)
	}
	if events[0].NextApproverID != "mgr-1" {
		t.Errorf("submitted event should name the first approver, got %q", events[0].NextApproverID)
	}
}

func TestStartApprovalCascadesLeadingSkips(t *testing.T) {
	// Only HR resolves: step 1 would fail, so make step 1 the optional
	// dept head by shrinking the directory and using a rule where the
	// first two steps are skippable.
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{
		specKey(directory.SpecificRole("hr_ops")): identityFor("hr-1", "HR Ops"),
	}}
	rule := &workflow.WorkflowRule{
		ID:           primitive.NewObjectID(),
		WorkflowType: workflow.TypeLeaveApproval,
		Name:         "optional manager",
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), CanSkip: true},
			{Order: 2, Name: "HR review", Approver: directory.SpecificRole("hr_ops")},
		},
	}
	repo := newFakeApprovalRepo()
	sink := &fakeSink{}
	service := NewApprovalService(repo, &fakeSelector{rule: rule}, NewStepSequencer(dir), noopAudit{}, sink, zap.NewNop())

	instance, err := service.StartApproval(context.Background(), workflow.TypeLeaveApproval,
		SubjectRef{Type: "leave_request", ID: "leave-7"}, "emp-1", nil)
	if err != nil {
		t.Fatalf("StartApproval: %v", err)
	}

	if instance.CurrentStep != 1 {
		t.Fatalf("instance should open on step 2, got index %d", instance.CurrentStep)
	}
	if instance.Steps[0].Outcome == nil || instance.Steps[0].Outcome.Decision != DecisionSkipped {
		t.Errorf("leading pre-skipped step has no SKIPPED outcome")
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("expected SUBMITTED + SKIPPED events, got %+v", events)
	}
	if events[1].Decision != DecisionSkipped || events[1].NextApproverID != "hr-1" {
		t.Errorf("skip event = %+v", events[1])
	}
}

func TestStartApprovalFullySkippedChainAutoApproves(t *testing.T) {
	dir := &fakeDirectory{identities: map[string]*directory.ApproverIdentity{}}
	rule := &workflow.WorkflowRule{
		ID: primitive.NewObjectID(),
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), CanSkip: true},
			{Order: 2, Name: "Dept head sign-off", Approver: directory.DepartmentHead(), CanSkip: true},
		},
	}
	repo := newFakeApprovalRepo()
	service := NewApprovalService(repo, &fakeSelector{rule: rule}, NewStepSequencer(dir), noopAudit{}, &fakeSink{}, zap.NewNop())

	instance, err := service.StartApproval(context.Background(), workflow.TypeLeaveApproval,
		SubjectRef{Type: "leave_request", ID: "leave-9"}, "emp-1", nil)
	if err != nil {
		t.Fatalf("StartApproval: %v", err)
	}
	if instance.Status != StatusApproved {
		t.Fatalf("status = %s, want APPROVED when every step pre-skips", instance.Status)
	}
	if instance.CompletedAt == nil {
		t.Error("completed_at not set on terminal instance")
	}
}

func TestStartApprovalFailsWithoutRule(t *testing.T) {
	repo := newFakeApprovalRepo()
	service := NewApprovalService(repo, &fakeSelector{err: workflow.ErrNoApplicableRule},
		NewStepSequencer(fullDirectory()), noopAudit{}, &fakeSink{}, zap.NewNop())

	_, err := service.StartApproval(context.Background(), workflow.TypeSalaryChange,
		SubjectRef{Type: "salary_change", ID: "sc-1"}, "emp-1", nil)
	if !errors.Is(err, workflow.ErrNoApplicableRule) {
		t.Fatalf("error = %v, want ErrNoApplicableRule", err)
	}
	if len(repo.instances) != 0 {
		t.Error("no instance should be persisted when selection fails")
	}
}

func TestApproveAdvancesToNextStep(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	updated, err := f.service.Approve(context.Background(), instance.ID.Hex(), "mgr-1", nil, "looks fine")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if updated.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING", updated.Status)
	}
	if updated.CurrentStep != 1 {
		t.Fatalf("current step = %d, want 1", updated.CurrentStep)
	}
	outcome := updated.Steps[0].Outcome
	if outcome == nil || outcome.Decision != DecisionApproved || outcome.ActorID != "mgr-1" || outcome.Comment != "looks fine" {
		t.Errorf("step 1 outcome = %+v", outcome)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}

	events := f.sink.all()
	last := events[len(events)-1]
	if last.Decision != DecisionApproved || last.NextApproverID != "head-1" {
		t.Errorf("approve event = %+v", last)
	}
}

func TestApproveLastStepFinalizes(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	for _, actor := range []string{"mgr-1", "head-1", "hr-1"} {
		var err error
		instance, err = f.service.Approve(context.Background(), instance.ID.Hex(), actor, nil, "")
		if err != nil {
			t.Fatalf("Approve as %s: %v", actor, err)
		}
	}

	if instance.Status != StatusApproved {
		t.Fatalf("status = %s, want APPROVED", instance.Status)
	}
	if instance.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if instance.CurrentStep != len(instance.Steps)-1 {
		t.Errorf("current step moved past the last index: %d", instance.CurrentStep)
	}
}

func TestApproveCascadesThroughPreSkippedStep(t *testing.T) {
	dir := fullDirectory()
	delete(dir.identities, specKey(directory.DepartmentHead()))
	f := newFixture(t, dir)
	instance := start(t, f)

	if !instance.Steps[1].PreSkipped {
		t.Fatal("fixture: step 2 should be pre-skipped")
	}

	updated, err := f.service.Approve(context.Background(), instance.ID.Hex(), "mgr-1", nil, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if updated.CurrentStep != 2 {
		t.Fatalf("current step = %d, want 2 (skipped over step 2)", updated.CurrentStep)
	}
	if updated.Steps[1].Outcome == nil || updated.Steps[1].Outcome.Decision != DecisionSkipped {
		t.Errorf("pre-skipped step outcome = %+v", updated.Steps[1].Outcome)
	}
	// One approval plus its cascade is a single versioned write.
	if f.repo.writes != 1 {
		t.Errorf("repo writes = %d, want 1", f.repo.writes)
	}
}

func TestApproveRejectsWrongActor(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	_, err := f.service.Approve(context.Background(), instance.ID.Hex(), "hr-1", nil, "")
	if !errors.Is(err, ErrNotCurrentApprover) {
		t.Fatalf("error = %v, want ErrNotCurrentApprover", err)
	}
}

func TestSuperAdminMayActOnAnyStep(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	updated, err := f.service.Approve(context.Background(), instance.ID.Hex(), "admin-1", []string{"super_admin"}, "override")
	if err != nil {
		t.Fatalf("Approve with override: %v", err)
	}
	if updated.Steps[0].Outcome.ActorID != "admin-1" {
		t.Errorf("override actor not recorded: %+v", updated.Steps[0].Outcome)
	}
}

func TestRejectTerminatesImmediately(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	updated, err := f.service.Reject(context.Background(), instance.ID.Hex(), "mgr-1", nil, "missing documents")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if updated.Status != StatusRejected {
		t.Fatalf("status = %s, want REJECTED", updated.Status)
	}
	if updated.CurrentStep != 0 {
		t.Errorf("current step moved on rejection: %d", updated.CurrentStep)
	}
	for _, s := range updated.Steps[1:] {
		if s.Outcome != nil {
			t.Errorf("later step %d gained an outcome: %+v", s.Order, s.Outcome)
		}
	}

	// Terminal instances accept no further decisions.
	_, err = f.service.Approve(context.Background(), instance.ID.Hex(), "hr-1", nil, "")
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("approve after reject: error = %v, want ErrAlreadyFinalized", err)
	}
}

func TestRequestRevisionRecordsDistinctOutcome(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	updated, err := f.service.RequestRevision(context.Background(), instance.ID.Hex(), "mgr-1", nil, "please split into two requests")
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}

	if updated.Status != StatusRejected {
		t.Fatalf("status = %s, want REJECTED", updated.Status)
	}
	if updated.Steps[0].Outcome.Decision != DecisionRevisionRequested {
		t.Errorf("outcome = %s, want REVISION_REQUESTED", updated.Steps[0].Outcome.Decision)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	if _, err := f.service.Cancel(context.Background(), instance.ID.Hex(), "someone-else"); !errors.Is(err, ErrNotRequester) {
		t.Fatalf("cancel by stranger: error = %v, want ErrNotRequester", err)
	}

	updated, err := f.service.Cancel(context.Background(), instance.ID.Hex(), "emp-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if updated.Status != StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", updated.Status)
	}

	if _, err := f.service.Cancel(context.Background(), instance.ID.Hex(), "emp-1"); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("second cancel: error = %v, want ErrAlreadyFinalized", err)
	}
}

func TestAutoAdvance(t *testing.T) {
	dir := fullDirectory()
	rule := &workflow.WorkflowRule{
		ID: primitive.NewObjectID(),
		Steps: []workflow.StepTemplate{
			{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), AutoApproveAfterHours: hoursPtr(24)},
			{Order: 2, Name: "HR review", Approver: directory.SpecificRole("hr_ops")},
		},
	}
	repo := newFakeApprovalRepo()
	service := NewApprovalService(repo, &fakeSelector{rule: rule}, NewStepSequencer(dir), noopAudit{}, &fakeSink{}, zap.NewNop())

	instance, err := service.StartApproval(context.Background(), workflow.TypeLeaveApproval,
		SubjectRef{Type: "leave_request", ID: "leave-1"}, "emp-1", nil)
	if err != nil {
		t.Fatalf("StartApproval: %v", err)
	}

	// Deadline not reached yet.
	if _, err := service.AutoAdvance(context.Background(), instance.ID.Hex(), instance.StepEnteredAt.Add(23*time.Hour)); !errors.Is(err, ErrStepNotDue) {
		t.Fatalf("early auto-advance: error = %v, want ErrStepNotDue", err)
	}

	updated, err := service.AutoAdvance(context.Background(), instance.ID.Hex(), instance.StepEnteredAt.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("AutoAdvance: %v", err)
	}
	outcome := updated.Steps[0].Outcome
	if outcome == nil || outcome.Decision != DecisionAutoApproved || outcome.ActorID != "" {
		t.Errorf("auto-approved outcome = %+v", outcome)
	}
	if updated.CurrentStep != 1 {
		t.Errorf("current step = %d, want 1", updated.CurrentStep)
	}

	// Step 2 has no timeout.
	if _, err := service.AutoAdvance(context.Background(), instance.ID.Hex(), time.Now().Add(1000*time.Hour)); !errors.Is(err, ErrStepNotDue) {
		t.Fatalf("auto-advance without timeout: error = %v, want ErrStepNotDue", err)
	}
}

func TestConcurrentApproveHasExactlyOneWinner(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	barrier := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-barrier
			_, results[i] = f.service.Approve(context.Background(), instance.ID.Hex(), "mgr-1", nil, "")
		}(i)
	}
	close(barrier)
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrVersionConflict):
		case errors.Is(err, ErrNotCurrentApprover):
			// A loser that read state after the winner's commit sees the
			// instance already advanced past mgr-1's step.
		default:
			t.Errorf("worker %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	stored, _ := f.repo.GetByID(context.Background(), instance.ID.Hex())
	if stored.CurrentStep != 1 {
		t.Errorf("current step = %d, want 1 after a single decisive approval", stored.CurrentStep)
	}
}

func TestStartApprovalRejectsSteplessRule(t *testing.T) {
	rule := &workflow.WorkflowRule{
		ID:           primitive.NewObjectID(),
		WorkflowType: workflow.TypeLeaveApproval,
		Name:         "edited down to nothing",
		Active:       true,
	}

	repo := newFakeApprovalRepo()
	sink := &fakeSink{}
	service := NewApprovalService(
		repo,
		&fakeSelector{rule: rule},
		NewStepSequencer(fullDirectory()),
		noopAudit{},
		sink,
		zap.NewNop(),
	)

	instance, err := service.StartApproval(context.Background(), workflow.TypeLeaveApproval,
		SubjectRef{Type: "leave_request", ID: "leave-42"}, "emp-1", nil)
	if err == nil {
		t.Fatal("expected an error for a rule with no steps")
	}
	if instance != nil {
		t.Errorf("instance = %+v, want nil", instance)
	}
	if len(repo.instances) != 0 {
		t.Errorf("stored %d instances, want 0", len(repo.instances))
	}
	if got := sink.all(); len(got) != 0 {
		t.Errorf("emitted %d events, want 0", len(got))
	}
}

func TestDecisionOnCorruptStepIndexFails(t *testing.T) {
	f := newFixture(t, fullDirectory())
	instance := start(t, f)

	// Corrupt the stored document the way a stray write would.
	f.repo.mu.Lock()
	f.repo.instances[instance.ID.Hex()].CurrentStep = len(instance.Steps)
	f.repo.mu.Unlock()

	if _, err := f.service.Approve(context.Background(), instance.ID.Hex(), "mgr-1", nil, ""); err == nil {
		t.Fatal("expected an error for an out-of-range current step")
	}
	if _, err := f.service.Cancel(context.Background(), instance.ID.Hex(), "emp-1"); err == nil {
		t.Fatal("expected an error for an out-of-range current step on cancel")
	}
}
