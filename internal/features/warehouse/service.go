package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go-hrm/internal/config"
	"go-hrm/internal/features/approval"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// WarehouseSyncService copies finalized approval instances into the
// reporting warehouse. The warehouse is append-mostly: re-synced rows
// overwrite in place, so retries are harmless.
type WarehouseSyncService interface {
	SyncFinalized(ctx context.Context) (int, error)
	Enabled() bool
}

type WarehouseSyncServiceImpl struct {
	db           *sql.DB
	approvalRepo approval.ApprovalRepository
	logger       *zap.Logger

	mu       sync.Mutex
	lastSync time.Time
}

const schemaStmt = `
CREATE TABLE IF NOT EXISTS approval_instances (
	instance_id   text PRIMARY KEY,
	workflow_type text NOT NULL,
	subject_type  text NOT NULL,
	subject_id    text NOT NULL,
	requester_id  text NOT NULL,
	status        text NOT NULL,
	step_count    integer NOT NULL,
	created_at    timestamptz NOT NULL,
	completed_at  timestamptz,
	synced_at     timestamptz NOT NULL
)`

const upsertStmt = `
INSERT INTO approval_instances
	(instance_id, workflow_type, subject_type, subject_id, requester_id, status, step_count, created_at, completed_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (instance_id) DO UPDATE SET
	status = EXCLUDED.status,
	completed_at = EXCLUDED.completed_at,
	synced_at = EXCLUDED.synced_at`

// NewWarehouseSyncService connects to the warehouse when a DSN is
// configured; without one the service stays disabled and every sync is
// a no-op.
func NewWarehouseSyncService(cfg *config.Config, approvalRepo approval.ApprovalRepository, logger *zap.Logger) (WarehouseSyncService, error) {
	service := &WarehouseSyncServiceImpl{
		approvalRepo: approvalRepo,
		logger:       logger,
	}
	if cfg.WarehouseDSN == "" {
		logger.Info("warehouse sync disabled, no DSN configured")
		return service, nil
	}

	db, err := sql.Open("postgres", cfg.WarehouseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaStmt); err != nil {
		return nil, fmt.Errorf("failed to ensure warehouse schema: %w", err)
	}

	service.db = db
	return service, nil
}

func (s *WarehouseSyncServiceImpl) Enabled() bool {
	return s.db != nil
}

func (s *WarehouseSyncServiceImpl) SyncFinalized(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, nil
	}

	s.mu.Lock()
	// Overlap the window by a minute so a row finalized during the
	// previous run is never missed; the upsert absorbs the duplicates.
	since := s.lastSync.Add(-time.Minute)
	s.mu.Unlock()

	instances, err := s.approvalRepo.FindFinalizedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list finalized instances: %w", err)
	}

	synced := 0
	now := time.Now()
	for _, instance := range instances {
		_, err := s.db.ExecContext(ctx, upsertStmt,
			instance.ID.Hex(),
			string(instance.WorkflowType),
			instance.Subject.Type,
			instance.Subject.ID,
			instance.RequesterID,
			string(instance.Status),
			len(instance.Steps),
			instance.CreatedAt,
			instance.CompletedAt,
			now,
		)
		if err != nil {
			s.logger.Error("failed to upsert instance into warehouse",
				zap.String("instance_id", instance.ID.Hex()),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	s.mu.Lock()
	s.lastSync = now
	s.mu.Unlock()

	if synced > 0 {
		s.logger.Info("warehouse sync completed", zap.Int("synced", synced))
	}
	return synced, nil
}
