package audit

import (
	"context"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorLookup resolves employee ids to display names. Satisfied by an
// adapter over the employee repository, wired in main.
type ActorLookup interface {
	LookupNames(ctx context.Context, ids []string) (map[string]string, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Lookup ActorLookup
}

func NewAuditService(repo AuditRepository, lookup ActorLookup) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Lookup: lookup,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	// Extract actor from context; scheduler and seeder run as "system"
	actorID := "system"
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		actorID = claims.EmployeeID
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]string, 0)
	unique := make(map[string]bool)
	for _, l := range logs {
		if l.ActorID != "system" && l.ActorID != "" && !unique[l.ActorID] {
			unique[l.ActorID] = true
			actorIDs = append(actorIDs, l.ActorID)
		}
	}

	if len(actorIDs) > 0 && s.Lookup != nil {
		names, err := s.Lookup.LookupNames(ctx, actorIDs)
		if err == nil {
			for i := range logs {
				logs[i].ActorName = names[logs[i].ActorID]
			}
		}
	}

	return logs, nil
}
