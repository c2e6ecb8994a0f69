package employee

import (
	"context"
	"errors"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeService interface {
	CreateEmployee(ctx context.Context, emp *Employee, password string) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context, filter map[string]interface{}) ([]Employee, error)
	UpdateEmployee(ctx context.Context, id string, emp *Employee) error
	DeactivateEmployee(ctx context.Context, id string) error
}

type EmployeeServiceImpl struct {
	Repo         EmployeeRepository
	AuditService audit.AuditService
}

func NewEmployeeService(repo EmployeeRepository, auditService audit.AuditService) EmployeeService {
	return &EmployeeServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, emp *Employee, password string) error {
	if emp.Email == "" {
		return errors.New("email is required")
	}

	existing, err := s.Repo.FindByEmail(ctx, emp.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("an employee with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	emp.PasswordHash = string(hash)

	if emp.ID.IsZero() {
		emp.ID = primitive.NewObjectID()
	}
	emp.Active = true
	emp.CreatedAt = time.Now()
	emp.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, emp); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "employees", emp.ID.Hex(), map[string]common_models.Change{
		"employee": {New: emp.Email},
	})
	return nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter map[string]interface{}) ([]Employee, error) {
	return s.Repo.List(ctx, filter)
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, id string, emp *Employee) error {
	old, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.New("employee not found")
	}

	if emp.ManagerID != nil && emp.ManagerID.Hex() == id {
		return errors.New("an employee cannot be their own manager")
	}

	if err := s.Repo.Update(ctx, id, emp); err != nil {
		return err
	}

	changes := map[string]common_models.Change{}
	if old.ManagerID != emp.ManagerID {
		changes["manager_id"] = common_models.Change{Old: old.ManagerID, New: emp.ManagerID}
	}
	if old.DepartmentID != emp.DepartmentID {
		changes["department_id"] = common_models.Change{Old: old.DepartmentID, New: emp.DepartmentID}
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "employees", id, changes)
	return nil
}

func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, id string) error {
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "employees", id, map[string]common_models.Change{
		"active": {Old: true, New: false},
	})
	return nil
}
