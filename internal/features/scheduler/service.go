package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-hrm/internal/config"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/warehouse"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepSummary reports one timeout sweep run.
type SweepSummary struct {
	Scanned   int `json:"scanned"`
	Advanced  int `json:"advanced"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

type SchedulerService interface {
	InitializeScheduler() error
	StopScheduler() error
	// RunTimeoutSweep auto-approves every pending step whose deadline
	// has passed. Safe to run from several processes at once: the
	// version check in the store lets only one of them win per step.
	RunTimeoutSweep(ctx context.Context) (SweepSummary, error)
}

type SchedulerServiceImpl struct {
	approvalRepo    approval.ApprovalRepository
	approvalService approval.ApprovalService
	warehouseSync   warehouse.WarehouseSyncService
	config          *config.Config
	logger          *zap.Logger

	scheduler *cron.Cron
}

func NewSchedulerService(
	approvalRepo approval.ApprovalRepository,
	approvalService approval.ApprovalService,
	warehouseSync warehouse.WarehouseSyncService,
	cfg *config.Config,
	logger *zap.Logger,
) SchedulerService {
	return &SchedulerServiceImpl{
		approvalRepo:    approvalRepo,
		approvalService: approvalService,
		warehouseSync:   warehouseSync,
		config:          cfg,
		logger:          logger,
	}
}

func (s *SchedulerServiceImpl) InitializeScheduler() error {
	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc(s.config.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.RunTimeoutSweep(ctx); err != nil {
			s.logger.Error("timeout sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule timeout sweep: %w", err)
	}

	if s.warehouseSync.Enabled() {
		if _, err := s.scheduler.AddFunc(s.config.SyncSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := s.warehouseSync.SyncFinalized(ctx); err != nil {
				s.logger.Error("warehouse sync failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule warehouse sync: %w", err)
		}
	}

	s.scheduler.Start()
	s.logger.Info("scheduler started",
		zap.String("sweep_schedule", s.config.SweepSchedule),
		zap.String("sync_schedule", s.config.SyncSchedule),
	)
	return nil
}

func (s *SchedulerServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *SchedulerServiceImpl) RunTimeoutSweep(ctx context.Context) (SweepSummary, error) {
	var summary SweepSummary

	candidates, err := s.approvalRepo.FindPendingWithTimeout(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list timeout candidates: %w", err)
	}

	now := time.Now()
	for _, instance := range candidates {
		summary.Scanned++

		step := instance.Steps[instance.CurrentStep]
		if step.AutoApproveAfterHours == nil {
			continue
		}
		deadline := instance.StepEnteredAt.Add(time.Duration(*step.AutoApproveAfterHours) * time.Hour)
		if now.Before(deadline) {
			continue
		}

		_, err := s.approvalService.AutoAdvance(ctx, instance.ID.Hex(), now)
		switch {
		case err == nil:
			summary.Advanced++
		case errors.Is(err, approval.ErrVersionConflict),
			errors.Is(err, approval.ErrAlreadyFinalized),
			errors.Is(err, approval.ErrStepNotDue):
			// Another writer moved the instance between the scan and
			// our attempt. Nothing to redo.
			summary.Conflicts++
		default:
			summary.Failed++
			s.logger.Error("failed to auto-advance instance",
				zap.String("instance_id", instance.ID.Hex()),
				zap.Error(err),
			)
		}
	}

	if summary.Advanced > 0 || summary.Failed > 0 {
		s.logger.Info("timeout sweep completed",
			zap.Int("scanned", summary.Scanned),
			zap.Int("advanced", summary.Advanced),
			zap.Int("conflicts", summary.Conflicts),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, nil
}
