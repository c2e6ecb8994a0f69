package approval

import (
	"context"
	"fmt"
	"slices"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"
	"go-hrm/internal/features/role"
	"go-hrm/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ApprovalService interface {
	// StartApproval selects the governing rule, materializes the chain
	// and persists a new PENDING instance. All-or-nothing: a
	// non-skippable unresolved approver fails the whole call.
	StartApproval(ctx context.Context, workflowType workflow.WorkflowType, subject SubjectRef, requesterID string, ruleCtx workflow.RuleContext) (*ApprovalInstance, error)

	GetStatus(ctx context.Context, instanceID string) (*ApprovalInstance, error)
	ListBySubject(ctx context.Context, subjectType, subjectID string) ([]ApprovalInstance, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]ApprovalInstance, error)

	Approve(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*ApprovalInstance, error)
	Reject(ctx context.Context, instanceID, actorID string, actorRoles []string, reason string) (*ApprovalInstance, error)
	// RequestRevision terminates the chain like Reject but marks the
	// outcome so the domain entity can reopen its draft. Resubmission
	// starts a fresh instance.
	RequestRevision(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*ApprovalInstance, error)
	Cancel(ctx context.Context, instanceID, requesterID string) (*ApprovalInstance, error)

	// AutoAdvance is the scheduler's entry point: approves the current
	// step without a human actor once its timeout has elapsed.
	AutoAdvance(ctx context.Context, instanceID string, now time.Time) (*ApprovalInstance, error)
}

type ApprovalServiceImpl struct {
	Repo         ApprovalRepository
	Selector     workflow.RuleSelector
	Sequencer    StepSequencer
	AuditService audit.AuditService
	Events       EventSink
	Logger       *zap.Logger
}

func NewApprovalService(
	repo ApprovalRepository,
	selector workflow.RuleSelector,
	sequencer StepSequencer,
	auditService audit.AuditService,
	events EventSink,
	logger *zap.Logger,
) ApprovalService {
	return &ApprovalServiceImpl{
		Repo:         repo,
		Selector:     selector,
		Sequencer:    sequencer,
		AuditService: auditService,
		Events:       events,
		Logger:       logger,
	}
}

func (s *ApprovalServiceImpl) StartApproval(ctx context.Context, workflowType workflow.WorkflowType, subject SubjectRef, requesterID string, ruleCtx workflow.RuleContext) (*ApprovalInstance, error) {
	rule, err := s.Selector.SelectRule(ctx, workflowType, ruleCtx)
	if err != nil {
		return nil, err
	}

	steps, err := s.Sequencer.MaterializeChain(ctx, rule, requesterID)
	if err != nil {
		return nil, err
	}
	// Validate rejects stepless rules at save time, but a document
	// edited behind the service must not panic the engine.
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow rule %s has no steps", rule.ID.Hex())
	}

	now := time.Now()
	instance := &ApprovalInstance{
		ID:            primitive.NewObjectID(),
		WorkflowType:  workflowType,
		RuleID:        rule.ID,
		Subject:       subject,
		RequesterID:   requesterID,
		Steps:         steps,
		CurrentStep:   0,
		Status:        StatusPending,
		Version:       1,
		StepEnteredAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// A chain may open on pre-skipped steps; resolve them before the
	// first write so the instance never sits on an already-decided step.
	events := []Event{s.eventFor(instance, instance.Steps[0].Order, DecisionSubmitted, now)}
	events = append(events, s.cascadeSkips(instance, now)...)
	s.stampFinal(instance, events)

	if err := s.Repo.Create(ctx, instance); err != nil {
		return nil, err
	}

	s.publish(instance, events)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "approval_instances", instance.ID.Hex(), map[string]common_models.Change{
		"status": {New: instance.Status},
		"rule":   {New: rule.Name},
	})

	s.Logger.Info("approval instance started",
		zap.String("instance_id", instance.ID.Hex()),
		zap.String("workflow_type", string(workflowType)),
		zap.String("subject", subject.Type+"/"+subject.ID),
	)
	return instance, nil
}

func (s *ApprovalServiceImpl) GetStatus(ctx context.Context, instanceID string) (*ApprovalInstance, error) {
	instance, err := s.Repo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrNotFound
	}
	return instance, nil
}

func (s *ApprovalServiceImpl) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]ApprovalInstance, error) {
	return s.Repo.FindBySubject(ctx, subjectType, subjectID)
}

func (s *ApprovalServiceImpl) ListPendingForApprover(ctx context.Context, approverID string) ([]ApprovalInstance, error) {
	return s.Repo.FindPendingByApprover(ctx, approverID)
}

func (s *ApprovalServiceImpl) Approve(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*ApprovalInstance, error) {
	instance, err := s.loadPending(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(instance, actorID, actorRoles); err != nil {
		return nil, err
	}

	now := time.Now()
	events := s.recordAndAdvance(instance, StepOutcome{
		Decision:  DecisionApproved,
		ActorID:   actorID,
		Comment:   comment,
		Timestamp: now,
	}, now)

	return s.commit(ctx, instance, events)
}

func (s *ApprovalServiceImpl) Reject(ctx context.Context, instanceID, actorID string, actorRoles []string, reason string) (*ApprovalInstance, error) {
	return s.terminate(ctx, instanceID, actorID, actorRoles, reason, DecisionRejected)
}

func (s *ApprovalServiceImpl) RequestRevision(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*ApprovalInstance, error) {
	return s.terminate(ctx, instanceID, actorID, actorRoles, comment, DecisionRevisionRequested)
}

// terminate handles both rejection flavors: the chain ends, the current
// step index stays where it was.
func (s *ApprovalServiceImpl) terminate(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string, decision Decision) (*ApprovalInstance, error) {
	instance, err := s.loadPending(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(instance, actorID, actorRoles); err != nil {
		return nil, err
	}

	now := time.Now()
	step := &instance.Steps[instance.CurrentStep]
	step.Outcome = &StepOutcome{
		Decision:  decision,
		ActorID:   actorID,
		Comment:   comment,
		Timestamp: now,
	}
	instance.Status = StatusRejected
	instance.CompletedAt = &now

	events := []Event{s.eventFor(instance, step.Order, decision, now)}
	return s.commit(ctx, instance, events)
}

func (s *ApprovalServiceImpl) Cancel(ctx context.Context, instanceID, requesterID string) (*ApprovalInstance, error) {
	instance, err := s.loadPending(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.RequesterID != requesterID {
		return nil, ErrNotRequester
	}

	now := time.Now()
	instance.Status = StatusCancelled
	instance.CompletedAt = &now

	events := []Event{s.eventFor(instance, instance.Steps[instance.CurrentStep].Order, DecisionCancelled, now)}
	return s.commit(ctx, instance, events)
}

func (s *ApprovalServiceImpl) AutoAdvance(ctx context.Context, instanceID string, now time.Time) (*ApprovalInstance, error) {
	instance, err := s.loadPending(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	step := instance.Steps[instance.CurrentStep]
	if step.AutoApproveAfterHours == nil {
		return nil, ErrStepNotDue
	}
	deadline := instance.StepEnteredAt.Add(time.Duration(*step.AutoApproveAfterHours) * time.Hour)
	if now.Before(deadline) {
		return nil, ErrStepNotDue
	}

	events := s.recordAndAdvance(instance, StepOutcome{
		Decision:  DecisionAutoApproved,
		Comment:   "auto-approved due to timeout",
		Timestamp: now,
	}, now)

	return s.commit(ctx, instance, events)
}

func (s *ApprovalServiceImpl) loadPending(ctx context.Context, instanceID string) (*ApprovalInstance, error) {
	instance, err := s.Repo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrNotFound
	}
	if instance.Status.IsTerminal() {
		return nil, ErrAlreadyFinalized
	}
	if instance.CurrentStep < 0 || instance.CurrentStep >= len(instance.Steps) {
		return nil, fmt.Errorf("approval instance %s: current step %d out of range for %d steps",
			instanceID, instance.CurrentStep, len(instance.Steps))
	}
	return instance, nil
}

func (s *ApprovalServiceImpl) authorizeActor(instance *ApprovalInstance, actorID string, actorRoles []string) error {
	if slices.Contains(actorRoles, role.KeySuperAdmin) {
		return nil
	}
	step := instance.Steps[instance.CurrentStep]
	if step.Approver == nil || step.Approver.EmployeeID != actorID {
		return ErrNotCurrentApprover
	}
	return nil
}

// recordAndAdvance writes the outcome for the current step, moves the
// index forward and then resolves any run of pre-skipped steps, so the
// instance never returns control while parked on a decided step.
func (s *ApprovalServiceImpl) recordAndAdvance(instance *ApprovalInstance, outcome StepOutcome, now time.Time) []Event {
	step := &instance.Steps[instance.CurrentStep]
	step.Outcome = &outcome

	events := []Event{s.eventFor(instance, step.Order, outcome.Decision, now)}
	s.advance(instance, now)
	events = append(events, s.cascadeSkips(instance, now)...)
	s.stampFinal(instance, events)
	return events
}

// stampFinal writes the post-transition status and, while still
// pending, the approver now holding the instance onto the last event.
func (s *ApprovalServiceImpl) stampFinal(instance *ApprovalInstance, events []Event) {
	last := &events[len(events)-1]
	last.NewStatus = instance.Status
	if instance.Status == StatusPending {
		if approver := instance.Steps[instance.CurrentStep].Approver; approver != nil {
			last.NextApproverID = approver.EmployeeID
		}
	}
}

func (s *ApprovalServiceImpl) advance(instance *ApprovalInstance, now time.Time) {
	if instance.CurrentStep == len(instance.Steps)-1 {
		instance.Status = StatusApproved
		instance.CompletedAt = &now
		return
	}
	instance.CurrentStep++
	instance.StepEnteredAt = now
}

func (s *ApprovalServiceImpl) cascadeSkips(instance *ApprovalInstance, now time.Time) []Event {
	var events []Event
	for instance.Status == StatusPending {
		step := &instance.Steps[instance.CurrentStep]
		if !step.PreSkipped || step.Outcome != nil {
			break
		}
		step.Outcome = &StepOutcome{
			Decision:  DecisionSkipped,
			Comment:   step.SkipReason,
			Timestamp: now,
		}
		events = append(events, s.eventFor(instance, step.Order, DecisionSkipped, now))
		s.advance(instance, now)
	}
	return events
}

func (s *ApprovalServiceImpl) commit(ctx context.Context, instance *ApprovalInstance, events []Event) (*ApprovalInstance, error) {
	if err := s.Repo.UpdateWithVersion(ctx, instance); err != nil {
		return nil, err
	}

	s.publish(instance, events)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "approval_instances", instance.ID.Hex(), map[string]common_models.Change{
		"status":       {New: instance.Status},
		"current_step": {New: instance.CurrentStep},
	})
	return instance, nil
}

// publish runs after the write commits; the sink must never be invoked
// while a transition is still in flight.
func (s *ApprovalServiceImpl) publish(instance *ApprovalInstance, events []Event) {
	if s.Events == nil {
		return
	}
	for _, ev := range events {
		s.Events.Publish(ev)
	}
}

func (s *ApprovalServiceImpl) eventFor(instance *ApprovalInstance, stepOrder int, decision Decision, now time.Time) Event {
	return Event{
		InstanceID:   instance.ID.Hex(),
		WorkflowType: instance.WorkflowType,
		Subject:      instance.Subject,
		RequesterID:  instance.RequesterID,
		StepOrder:    stepOrder,
		Decision:     decision,
		NewStatus:    instance.Status,
		Timestamp:    now,
	}
}
