package approval

import (
	"context"

	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/workflow"
)

// StepSequencer turns a rule into a frozen chain for one subject.
type StepSequencer interface {
	MaterializeChain(ctx context.Context, rule *workflow.WorkflowRule, subjectEmployeeID string) ([]ResolvedStep, error)
}

type StepSequencerImpl struct {
	Directory directory.DirectoryService
}

func NewStepSequencer(dir directory.DirectoryService) StepSequencer {
	return &StepSequencerImpl{Directory: dir}
}

// MaterializeChain resolves every step template in order. A step whose
// approver cannot be resolved is marked pre-skipped when the template
// allows it; otherwise the whole call fails and no chain is produced.
func (s *StepSequencerImpl) MaterializeChain(ctx context.Context, rule *workflow.WorkflowRule, subjectEmployeeID string) ([]ResolvedStep, error) {
	steps := make([]ResolvedStep, 0, len(rule.Steps))

	for _, tmpl := range rule.Steps {
		resolved := ResolvedStep{
			Order:                 tmpl.Order,
			Name:                  tmpl.Name,
			AutoApproveAfterHours: tmpl.AutoApproveAfterHours,
			CanSkip:               tmpl.CanSkip,
		}

		identity, err := s.Directory.ResolveApprover(ctx, subjectEmployeeID, tmpl.Approver)
		if err != nil {
			return nil, err
		}

		switch {
		case identity != nil:
			resolved.Approver = identity
		case tmpl.CanSkip:
			resolved.PreSkipped = true
			resolved.SkipReason = "approver unresolved"
		default:
			return nil, &UnresolvableApproverError{StepOrder: tmpl.Order, StepName: tmpl.Name}
		}

		steps = append(steps, resolved)
	}

	return steps, nil
}
