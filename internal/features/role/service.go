package role

import (
	"context"
	"errors"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/audit"
	"go-hrm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleService interface {
	CreateRole(ctx context.Context, role *Role) error
	GetRole(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id string, role *Role) error
	DeleteRole(ctx context.Context, id string) error

	// GetPermissionsForRoles is used by the permission middleware.
	GetPermissionsForRoles(ctx context.Context, roleKeys []string) ([]string, error)
}

type RoleServiceImpl struct {
	Repo         RoleRepository
	AuditService audit.AuditService
}

func NewRoleService(repo RoleRepository, auditService audit.AuditService) RoleService {
	return &RoleServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, role *Role) error {
	if role.Key == "" {
		role.Key = utils.Slugify(role.Name)
	}

	existing, err := s.Repo.FindByKey(ctx, role.Key)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("a role with this key already exists")
	}

	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, role); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "roles", role.ID.Hex(), map[string]common_models.Change{
		"role": {New: role},
	})
	return nil
}

func (s *RoleServiceImpl) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.Repo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, role *Role) error {
	old, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.New("role not found")
	}
	if old.IsSystem {
		return errors.New("system roles cannot be modified")
	}

	role.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, role); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "roles", id, map[string]common_models.Change{
		"role": {Old: old, New: role},
	})
	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	old, _ := s.Repo.GetByID(ctx, id)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "roles", id, map[string]common_models.Change{
		"role": {Old: old, New: "DELETED"},
	})
	return nil
}

func (s *RoleServiceImpl) GetPermissionsForRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	roles, err := s.Repo.FindByKeys(ctx, roleKeys)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var permissions []string
	for _, r := range roles {
		for _, p := range r.Permissions {
			if !seen[p] {
				seen[p] = true
				permissions = append(permissions, p)
			}
		}
	}
	return permissions, nil
}
