package department

import (
	"context"
	"errors"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DepartmentService interface {
	CreateDepartment(ctx context.Context, dept *Department) error
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	UpdateDepartment(ctx context.Context, id string, dept *Department) error
	DeleteDepartment(ctx context.Context, id string) error
}

type DepartmentServiceImpl struct {
	Repo         DepartmentRepository
	AuditService audit.AuditService
}

func NewDepartmentService(repo DepartmentRepository, auditService audit.AuditService) DepartmentService {
	return &DepartmentServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *DepartmentServiceImpl) CreateDepartment(ctx context.Context, dept *Department) error {
	if dept.Name == "" {
		return errors.New("department name is required")
	}

	if dept.ID.IsZero() {
		dept.ID = primitive.NewObjectID()
	}
	dept.Active = true
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, dept); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "departments", dept.ID.Hex(), map[string]common_models.Change{
		"department": {New: dept},
	})
	return nil
}

func (s *DepartmentServiceImpl) GetDepartment(ctx context.Context, id string) (*Department, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DepartmentServiceImpl) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.Repo.List(ctx)
}

func (s *DepartmentServiceImpl) UpdateDepartment(ctx context.Context, id string, dept *Department) error {
	old, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.New("department not found")
	}

	if err := s.Repo.Update(ctx, id, dept); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "departments", id, map[string]common_models.Change{
		"department": {Old: old, New: dept},
	})
	return nil
}

func (s *DepartmentServiceImpl) DeleteDepartment(ctx context.Context, id string) error {
	old, _ := s.Repo.GetByID(ctx, id)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "departments", id, map[string]common_models.Change{
		"department": {Old: old, New: "DELETED"},
	})
	return nil
}
