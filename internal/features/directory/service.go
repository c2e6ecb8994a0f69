package directory

import (
	"context"

	"go-hrm/internal/features/department"
	"go-hrm/internal/features/employee"
	"go-hrm/internal/features/role"
)

// DirectoryService answers "who approves for this employee" questions.
// It is a pure read over org data: resolution failure is a nil identity,
// never an error, and nothing here mutates state.
type DirectoryService interface {
	ResolveApprover(ctx context.Context, subjectEmployeeID string, spec ApproverSpec) (*ApproverIdentity, error)
}

type DirectoryServiceImpl struct {
	EmployeeRepo   employee.EmployeeRepository
	DepartmentRepo department.DepartmentRepository
}

func NewDirectoryService(employeeRepo employee.EmployeeRepository, departmentRepo department.DepartmentRepository) DirectoryService {
	return &DirectoryServiceImpl{
		EmployeeRepo:   employeeRepo,
		DepartmentRepo: departmentRepo,
	}
}

func (s *DirectoryServiceImpl) ResolveApprover(ctx context.Context, subjectEmployeeID string, spec ApproverSpec) (*ApproverIdentity, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	switch spec.Type {
	case ApproverDirectManager:
		return s.resolveManager(ctx, subjectEmployeeID)
	case ApproverDepartmentHead:
		return s.resolveDepartmentHead(ctx, subjectEmployeeID)
	case ApproverHRAdmin:
		return s.resolveRoleHolder(ctx, role.KeyHRAdmin)
	case ApproverSpecificRole:
		return s.resolveRoleHolder(ctx, spec.RoleKey)
	case ApproverSpecificEmployee:
		return s.resolveEmployee(ctx, spec.EmployeeID)
	}
	return nil, nil
}

func (s *DirectoryServiceImpl) resolveManager(ctx context.Context, subjectEmployeeID string) (*ApproverIdentity, error) {
	subject, err := s.EmployeeRepo.GetByID(ctx, subjectEmployeeID)
	if err != nil {
		return nil, err
	}
	if subject == nil || subject.ManagerID == nil {
		return nil, nil
	}
	return s.resolveEmployee(ctx, subject.ManagerID.Hex())
}

func (s *DirectoryServiceImpl) resolveDepartmentHead(ctx context.Context, subjectEmployeeID string) (*ApproverIdentity, error) {
	subject, err := s.EmployeeRepo.GetByID(ctx, subjectEmployeeID)
	if err != nil {
		return nil, err
	}
	if subject == nil || subject.DepartmentID == nil {
		return nil, nil
	}

	dept, err := s.DepartmentRepo.GetByID(ctx, subject.DepartmentID.Hex())
	if err != nil {
		return nil, err
	}
	if dept == nil || dept.HeadID == nil {
		return nil, nil
	}
	return s.resolveEmployee(ctx, dept.HeadID.Hex())
}

// resolveRoleHolder assigns the holder with the lowest employee id. The
// sort lives in the repository query, so repeated resolutions of the
// same role land on the same person.
func (s *DirectoryServiceImpl) resolveRoleHolder(ctx context.Context, roleKey string) (*ApproverIdentity, error) {
	holders, err := s.EmployeeRepo.FindActiveByRoleKey(ctx, roleKey)
	if err != nil {
		return nil, err
	}
	if len(holders) == 0 {
		return nil, nil
	}
	return identityOf(&holders[0]), nil
}

func (s *DirectoryServiceImpl) resolveEmployee(ctx context.Context, employeeID string) (*ApproverIdentity, error) {
	emp, err := s.EmployeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil || !emp.Active {
		return nil, nil
	}
	return identityOf(emp), nil
}

func identityOf(emp *employee.Employee) *ApproverIdentity {
	return &ApproverIdentity{
		EmployeeID: emp.ID.Hex(),
		Name:       emp.FullName(),
		Email:      emp.Email,
	}
}
