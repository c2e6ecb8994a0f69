package scheduler

import (
	"context"
	"testing"
	"time"

	"go-hrm/internal/config"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeApprovalRepo struct {
	candidates []approval.ApprovalInstance
}

func (f *fakeApprovalRepo) Create(ctx context.Context, instance *approval.ApprovalInstance) error {
	return nil
}

func (f *fakeApprovalRepo) GetByID(ctx context.Context, id string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalRepo) FindBySubject(ctx context.Context, subjectType, subjectID string) ([]approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalRepo) FindPendingByApprover(ctx context.Context, approverID string) ([]approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalRepo) FindPendingWithTimeout(ctx context.Context) ([]approval.ApprovalInstance, error) {
	return f.candidates, nil
}

func (f *fakeApprovalRepo) UpdateWithVersion(ctx context.Context, instance *approval.ApprovalInstance) error {
	return nil
}

func (f *fakeApprovalRepo) FindFinalizedSince(ctx context.Context, since time.Time) ([]approval.ApprovalInstance, error) {
	return nil, nil
}

type fakeApprovalService struct {
	advanced []string
	errs     map[string]error
}

func (f *fakeApprovalService) StartApproval(ctx context.Context, workflowType workflow.WorkflowType, subject approval.SubjectRef, requesterID string, ruleCtx workflow.RuleContext) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) GetStatus(ctx context.Context, instanceID string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) ListPendingForApprover(ctx context.Context, approverID string) ([]approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) Approve(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) Reject(ctx context.Context, instanceID, actorID string, actorRoles []string, reason string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) RequestRevision(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) Cancel(ctx context.Context, instanceID, requesterID string) (*approval.ApprovalInstance, error) {
	return nil, nil
}

func (f *fakeApprovalService) AutoAdvance(ctx context.Context, instanceID string, now time.Time) (*approval.ApprovalInstance, error) {
	if err, ok := f.errs[instanceID]; ok {
		return nil, err
	}
	f.advanced = append(f.advanced, instanceID)
	return nil, nil
}

type disabledWarehouse struct{}

func (disabledWarehouse) SyncFinalized(ctx context.Context) (int, error) { return 0, nil }
func (disabledWarehouse) Enabled() bool                                  { return false }

func hoursPtr(h int) *int { return &h }

func pendingInstance(enteredHoursAgo int, timeoutHours *int) approval.ApprovalInstance {
	return approval.ApprovalInstance{
		ID:     primitive.NewObjectID(),
		Status: approval.StatusPending,
		Steps: []approval.ResolvedStep{
			{Order: 1, Name: "Manager review", AutoApproveAfterHours: timeoutHours},
		},
		CurrentStep:   0,
		StepEnteredAt: time.Now().Add(-time.Duration(enteredHoursAgo) * time.Hour),
	}
}

func TestRunTimeoutSweep(t *testing.T) {
	overdue := pendingInstance(30, hoursPtr(24))
	fresh := pendingInstance(2, hoursPtr(24))
	contested := pendingInstance(48, hoursPtr(24))

	repo := &fakeApprovalRepo{candidates: []approval.ApprovalInstance{overdue, fresh, contested}}
	approvals := &fakeApprovalService{
		errs: map[string]error{contested.ID.Hex(): approval.ErrVersionConflict},
	}
	service := NewSchedulerService(repo, approvals, disabledWarehouse{}, &config.Config{SweepSchedule: "* * * * *"}, zap.NewNop())

	summary, err := service.RunTimeoutSweep(context.Background())
	if err != nil {
		t.Fatalf("RunTimeoutSweep: %v", err)
	}

	if summary.Scanned != 3 {
		t.Errorf("scanned = %d, want 3", summary.Scanned)
	}
	if summary.Advanced != 1 {
		t.Errorf("advanced = %d, want 1", summary.Advanced)
	}
	if summary.Conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", summary.Conflicts)
	}
	if len(approvals.advanced) != 1 || approvals.advanced[0] != overdue.ID.Hex() {
		t.Errorf("advanced instances = %v, want only %s", approvals.advanced, overdue.ID.Hex())
	}
}

func TestRunTimeoutSweepIsIdempotent(t *testing.T) {
	overdue := pendingInstance(30, hoursPtr(24))
	repo := &fakeApprovalRepo{candidates: []approval.ApprovalInstance{overdue}}
	approvals := &fakeApprovalService{}
	service := NewSchedulerService(repo, approvals, disabledWarehouse{}, &config.Config{SweepSchedule: "* * * * *"}, zap.NewNop())

	if _, err := service.RunTimeoutSweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	// The instance advanced, so a second scan sees it already past the
	// step and the service reports ErrStepNotDue.
	approvals.errs = map[string]error{overdue.ID.Hex(): approval.ErrStepNotDue}
	summary, err := service.RunTimeoutSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if summary.Advanced != 0 {
		t.Errorf("second sweep advanced = %d, want 0", summary.Advanced)
	}
	if len(approvals.advanced) != 1 {
		t.Errorf("AutoAdvance succeeded %d times, want exactly once", len(approvals.advanced))
	}
}
