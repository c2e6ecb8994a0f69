package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/audit"
	"go-hrm/internal/features/employee"
	"go-hrm/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubjectTypeLeave is the subject type leave requests register under
// in the approval engine.
const SubjectTypeLeave = "leave_request"

type LeaveService interface {
	approval.EventSink
	CreateLeaveRequest(ctx context.Context, request *LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	CancelLeaveRequest(ctx context.Context, id string, employeeID string) error
}

type LeaveServiceImpl struct {
	Repo            LeaveRepository
	EmployeeRepo    employee.EmployeeRepository
	ApprovalService approval.ApprovalService
	AuditService    audit.AuditService
	Logger          *zap.Logger
}

func NewLeaveService(
	repo LeaveRepository,
	employeeRepo employee.EmployeeRepository,
	approvalService approval.ApprovalService,
	auditService audit.AuditService,
	logger *zap.Logger,
) LeaveService {
	return &LeaveServiceImpl{
		Repo:            repo,
		EmployeeRepo:    employeeRepo,
		ApprovalService: approvalService,
		AuditService:    auditService,
		Logger:          logger,
	}
}

func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, request *LeaveRequest) error {
	if err := request.Validate(); err != nil {
		return err
	}

	emp, err := s.EmployeeRepo.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return err
	}
	if emp == nil || !emp.Active {
		return errors.New("employee not found or inactive")
	}

	now := time.Now()
	request.ID = primitive.NewObjectID()
	request.Days = request.DurationDays()
	request.Status = LeavePending
	request.CreatedAt = now
	request.UpdatedAt = now

	ruleCtx := workflow.RuleContext{
		"leave_type": string(request.Type),
		"days":       request.Days,
	}
	if emp.DepartmentID != nil {
		ruleCtx["department"] = emp.DepartmentID.Hex()
	}

	// The row goes in before the instance so events never point at a
	// request that does not exist yet; a failed start removes it again.
	if err := s.Repo.Create(ctx, request); err != nil {
		return err
	}

	instance, err := s.ApprovalService.StartApproval(ctx, workflow.TypeLeaveApproval,
		approval.SubjectRef{Type: SubjectTypeLeave, ID: request.ID.Hex()},
		request.EmployeeID, ruleCtx)
	if err != nil {
		if derr := s.Repo.Delete(ctx, request.ID.Hex()); derr != nil {
			s.Logger.Error("failed to remove leave request after approval start failed",
				zap.String("leave_id", request.ID.Hex()),
				zap.Error(derr),
			)
		}
		return fmt.Errorf("failed to start approval: %w", err)
	}

	request.ApprovalInstanceID = instance.ID.Hex()
	if err := s.Repo.AttachApproval(ctx, request.ID.Hex(), instance.ID.Hex()); err != nil {
		return err
	}

	// A fully pre-skipped chain finalizes inside StartApproval. The
	// terminal event also closes the row, but the write here does not
	// depend on the sink being wired.
	if instance.Status == approval.StatusApproved {
		request.Status = LeaveApproved
		if err := s.Repo.UpdateStatus(ctx, request.ID.Hex(), LeaveApproved, false); err != nil {
			return err
		}
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "leave_requests", request.ID.Hex(), map[string]common_models.Change{
		"leave_request": {New: request},
	})
	return nil
}

func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id string) (*LeaveRequest, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *LeaveServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	return s.Repo.ListByEmployee(ctx, employeeID)
}

func (s *LeaveServiceImpl) CancelLeaveRequest(ctx context.Context, id string, employeeID string) error {
	request, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return errors.New("leave request not found")
	}

	if _, err := s.ApprovalService.Cancel(ctx, request.ApprovalInstanceID, employeeID); err != nil {
		return err
	}
	return s.Repo.UpdateStatus(ctx, id, LeaveCancelled, false)
}

// Publish implements approval.EventSink: terminal events close the
// leave request the instance was opened for.
func (s *LeaveServiceImpl) Publish(event approval.Event) {
	if event.Subject.Type != SubjectTypeLeave || !event.NewStatus.IsTerminal() {
		return
	}

	status := LeaveRejected
	revision := false
	switch event.NewStatus {
	case approval.StatusApproved:
		status = LeaveApproved
	case approval.StatusCancelled:
		status = LeaveCancelled
	case approval.StatusRejected:
		if event.Decision == approval.DecisionRevisionRequested {
			revision = true
		}
	}

	if err := s.Repo.UpdateStatus(context.Background(), event.Subject.ID, status, revision); err != nil {
		s.Logger.Error("failed to close leave request from approval event",
			zap.String("leave_id", event.Subject.ID),
			zap.String("instance_id", event.InstanceID),
			zap.Error(err),
		)
	}
}
