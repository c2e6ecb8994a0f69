package auth

import (
	"context"
	"errors"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"
	"go-hrm/internal/features/employee"
	"go-hrm/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ChangePassword(ctx context.Context, employeeID, oldPassword, newPassword string) error
}

type AuthServiceImpl struct {
	EmployeeRepo employee.EmployeeRepository
	AuditService audit.AuditService
}

func NewAuthService(employeeRepo employee.EmployeeRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		EmployeeRepo: employeeRepo,
		AuditService: auditService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	emp, err := s.EmployeeRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if emp == nil || !emp.Active {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(emp.ID, emp.RoleKeys)
	if err != nil {
		return "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "employees", emp.ID.Hex(), map[string]common_models.Change{
		"login": {New: emp.Email},
	})
	return token, nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, employeeID, oldPassword, newPassword string) error {
	emp, err := s.EmployeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	emp.PasswordHash = string(hash)
	return s.EmployeeRepo.Update(ctx, employeeID, emp)
}
