package automation

import (
	"context"
	"errors"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/audit"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

type AutomationService interface {
	approval.EventSink
	CreateRule(ctx context.Context, rule *AutomationRule) error
	GetRule(ctx context.Context, id string) (*AutomationRule, error)
	ListRules(ctx context.Context) ([]AutomationRule, error)
	UpdateRule(ctx context.Context, rule *AutomationRule) error
	DeleteRule(ctx context.Context, id string) error
	// RunScript executes a script against a synthetic event, for
	// trying a rule out before saving it.
	RunScript(ctx context.Context, script string, event approval.Event) error
}

// AutomationServiceImpl runs scripts off the event stream on a worker
// goroutine. Scripts see the event as a plain map and cannot touch the
// engine, so a bad script can log nonsense but never move an instance.
type AutomationServiceImpl struct {
	Repo         AutomationRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
	eventChan    chan approval.Event
}

func NewAutomationService(repo AutomationRepository, auditService audit.AuditService, logger *zap.Logger) AutomationService {
	service := &AutomationServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Logger:       logger,
		eventChan:    make(chan approval.Event, 1000),
	}

	go service.processEvents()

	return service
}

func (s *AutomationServiceImpl) Publish(event approval.Event) {
	select {
	case s.eventChan <- event:
	default:
		s.Logger.Warn("automation buffer full, dropping event",
			zap.String("instance_id", event.InstanceID))
	}
}

func (s *AutomationServiceImpl) processEvents() {
	for event := range s.eventChan {
		rules, err := s.Repo.ListActive(context.Background())
		if err != nil {
			s.Logger.Error("failed to load automation rules", zap.Error(err))
			continue
		}

		for _, rule := range rules {
			if !rule.Matches(event) {
				continue
			}
			if err := s.RunScript(context.Background(), rule.Script, event); err != nil {
				s.Logger.Error("automation script failed",
					zap.String("rule", rule.Name),
					zap.String("instance_id", event.InstanceID),
					zap.Error(err),
				)
				continue
			}
			_ = s.AuditService.LogChange(context.Background(), common_models.AuditActionAutomation, "automation_rules", rule.ID.Hex(), map[string]common_models.Change{
				"triggered_by": {New: event.InstanceID},
			})
		}
	}
}

func (s *AutomationServiceImpl) RunScript(ctx context.Context, scriptContent string, event approval.Event) error {
	script := tengo.NewScript([]byte(scriptContent))
	script.SetImports(stdlib.GetModuleMap("fmt", "text", "times", "math"))

	script.Add("event", map[string]interface{}{
		"instance_id":      event.InstanceID,
		"workflow_type":    string(event.WorkflowType),
		"subject_type":     event.Subject.Type,
		"subject_id":       event.Subject.ID,
		"requester_id":     event.RequesterID,
		"step_order":       event.StepOrder,
		"decision":         string(event.Decision),
		"new_status":       string(event.NewStatus),
		"next_approver_id": event.NextApproverID,
	})

	compiled, err := script.Compile()
	if err != nil {
		return errors.New("failed to compile script: " + err.Error())
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return compiled.RunContext(runCtx)
}

func (s *AutomationServiceImpl) CreateRule(ctx context.Context, rule *AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if err := s.Repo.Create(ctx, rule); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "automation_rules", rule.ID.Hex(), map[string]common_models.Change{
		"rule": {New: rule},
	})
	return nil
}

func (s *AutomationServiceImpl) GetRule(ctx context.Context, id string) (*AutomationRule, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *AutomationServiceImpl) ListRules(ctx context.Context) ([]AutomationRule, error) {
	return s.Repo.List(ctx)
}

func (s *AutomationServiceImpl) UpdateRule(ctx context.Context, rule *AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	old, _ := s.Repo.GetByID(ctx, rule.ID.Hex())
	rule.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, rule); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "automation_rules", rule.ID.Hex(), map[string]common_models.Change{
		"rule": {Old: old, New: rule},
	})
	return nil
}

func (s *AutomationServiceImpl) DeleteRule(ctx context.Context, id string) error {
	old, _ := s.Repo.GetByID(ctx, id)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "automation_rules", id, map[string]common_models.Change{
		"rule": {Old: old, New: "DELETED"},
	})
	return nil
}
