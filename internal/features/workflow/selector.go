package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"

	common_models "go-hrm/internal/common/models"
)

// ErrNoApplicableRule means no active rule covers the request; an
// administrator has to configure one before the caller can proceed.
var ErrNoApplicableRule = errors.New("no applicable workflow rule")

// RuleContext carries the subject attributes rules match on, e.g.
// requester ID, department, amount.
type RuleContext map[string]interface{}

// RuleSelector picks the single rule that governs a request.
type RuleSelector interface {
	SelectRule(ctx context.Context, workflowType WorkflowType, ruleCtx RuleContext) (*WorkflowRule, error)
}

type RuleSelectorImpl struct {
	Repo WorkflowRepository
}

func NewRuleSelector(repo WorkflowRepository) RuleSelector {
	return &RuleSelectorImpl{Repo: repo}
}

// SelectRule filters active rules of the type by their conditions and
// picks the most specific match: more conditions beat fewer, and on a
// tie the most recently created rule wins.
func (s *RuleSelectorImpl) SelectRule(ctx context.Context, workflowType WorkflowType, ruleCtx RuleContext) (*WorkflowRule, error) {
	rules, err := s.Repo.ListActiveByType(ctx, workflowType)
	if err != nil {
		return nil, err
	}

	var matched []WorkflowRule
	for _, rule := range rules {
		if ruleMatches(rule, ruleCtx) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoApplicableRule
	}

	slices.SortFunc(matched, func(a, b WorkflowRule) int {
		if len(a.Conditions) != len(b.Conditions) {
			return len(b.Conditions) - len(a.Conditions)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return 0
	})

	return &matched[0], nil
}

func ruleMatches(rule WorkflowRule, ruleCtx RuleContext) bool {
	for _, cond := range rule.Conditions {
		if !conditionMatches(cond, ruleCtx) {
			return false
		}
	}
	return true
}

func conditionMatches(cond common_models.RuleCondition, ruleCtx RuleContext) bool {
	val, exists := ruleCtx[cond.Field]
	if !exists {
		return false
	}

	switch cond.Operator {
	case "eq", "":
		return compareEqual(val, cond.Value)
	case "ne":
		return !compareEqual(val, cond.Value)
	case "gt", "gte", "lt", "lte":
		a, aok := toFloat(val)
		b, bok := toFloat(cond.Value)
		if !aok || !bok {
			return false
		}
		switch cond.Operator {
		case "gt":
			return a > b
		case "gte":
			return a >= b
		case "lt":
			return a < b
		default:
			return a <= b
		}
	case "in":
		items, ok := cond.Value.([]interface{})
		if !ok {
			return false
		}
		for _, item := range items {
			if compareEqual(val, item) {
				return true
			}
		}
		return false
	}
	return false
}

func compareEqual(a, b interface{}) bool {
	// Numbers arrive as different widths depending on the decoder;
	// compare numerically when both sides are numeric.
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
