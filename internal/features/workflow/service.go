package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkflowService interface {
	CreateRule(ctx context.Context, rule WorkflowRule) (*WorkflowRule, error)
	GetRule(ctx context.Context, id string) (*WorkflowRule, error)
	ListRules(ctx context.Context) ([]WorkflowRule, error)
	UpdateRule(ctx context.Context, id string, rule WorkflowRule) error
	DeleteRule(ctx context.Context, id string) error
}

type WorkflowServiceImpl struct {
	Repo         WorkflowRepository
	AuditService audit.AuditService
}

func NewWorkflowService(repo WorkflowRepository, auditService audit.AuditService) WorkflowService {
	return &WorkflowServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *WorkflowServiceImpl) CreateRule(ctx context.Context, rule WorkflowRule) (*WorkflowRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOverlaps(ctx, rule); err != nil {
		return nil, err
	}

	if rule.ID.IsZero() {
		rule.ID = primitive.NewObjectID()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, rule); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionWorkflow, "workflow_rules", rule.ID.Hex(), map[string]common_models.Change{
		"rule": {New: rule},
	})
	return &rule, nil
}

func (s *WorkflowServiceImpl) GetRule(ctx context.Context, id string) (*WorkflowRule, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *WorkflowServiceImpl) ListRules(ctx context.Context) ([]WorkflowRule, error) {
	return s.Repo.List(ctx)
}

// UpdateRule edits the stored rule only. Instances materialized from an
// earlier version keep their frozen chains.
func (s *WorkflowServiceImpl) UpdateRule(ctx context.Context, id string, rule WorkflowRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	old, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.New("workflow rule not found")
	}

	rule.ID = old.ID
	if err := s.checkOverlaps(ctx, rule); err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, rule); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionWorkflow, "workflow_rules", id, map[string]common_models.Change{
		"rule": {Old: old, New: rule},
	})
	return nil
}

func (s *WorkflowServiceImpl) DeleteRule(ctx context.Context, id string) error {
	old, _ := s.Repo.GetByID(ctx, id)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionWorkflow, "workflow_rules", id, map[string]common_models.Change{
		"rule": {Old: old, New: "DELETED"},
	})
	return nil
}

// checkOverlaps keeps rule selection deterministic: two active rules of
// one type may not carry identical condition sets.
func (s *WorkflowServiceImpl) checkOverlaps(ctx context.Context, rule WorkflowRule) error {
	if !rule.Active {
		return nil
	}

	existing, err := s.Repo.ListActiveByType(ctx, rule.WorkflowType)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if other.ID == rule.ID {
			continue
		}

		if len(rule.Conditions) == 0 && len(other.Conditions) == 0 {
			return fmt.Errorf("a default rule (no conditions) already exists for %s", rule.WorkflowType)
		}

		if len(rule.Conditions) > 0 && len(other.Conditions) == len(rule.Conditions) {
			matchCount := 0
			for _, c1 := range rule.Conditions {
				for _, c2 := range other.Conditions {
					if c1.Field == c2.Field && c1.Operator == c2.Operator && compareEqual(c1.Value, c2.Value) {
						matchCount++
						break
					}
				}
			}
			if matchCount == len(rule.Conditions) {
				return errors.New("a rule with identical conditions already exists")
			}
		}
	}
	return nil
}
