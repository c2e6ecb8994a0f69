package main

import (
	"context"
	"log"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/config"
	"go-hrm/internal/database"
	"go-hrm/internal/features/department"
	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/employee"
	"go-hrm/internal/features/role"
	"go-hrm/internal/features/workflow"
	"go-hrm/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func hoursPtr(h int) *int { return &h }

// Seed populates a development database with roles, departments,
// employees and leave workflow rules. Re-running it is safe: existing
// roles, employees and rules are left alone.
func Seed(
	lc fx.Lifecycle,
	roleRepo role.RoleRepository,
	deptRepo department.DepartmentRepository,
	empRepo employee.EmployeeRepository,
	workflowRepo workflow.WorkflowRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("🌱 Starting Database Seeding...")

				// 1. Roles
				roles := []role.Role{
					{
						Key:         role.KeySuperAdmin,
						Name:        "Super Admin",
						Description: "Full access, may act on any approval step",
						Permissions: []string{"*"},
						IsSystem:    true,
					},
					{
						Key:         role.KeyHRAdmin,
						Name:        "HR Admin",
						Description: "Manages workflows, reports and employees",
						Permissions: []string{
							"workflows:create", "workflows:read", "workflows:update", "workflows:delete",
							"employees:create", "employees:read", "employees:update", "employees:delete",
							"departments:create", "departments:read", "departments:update", "departments:delete",
							"roles:read", "reports:read", "scheduler:run", "audit:read",
							"automation:create", "automation:read", "automation:update", "automation:delete",
						},
						IsSystem: true,
					},
					{
						Key:         "hr_ops",
						Name:        "HR Operations",
						Description: "Final sign-off on leave approvals",
						Permissions: []string{"employees:read", "departments:read", "reports:read"},
					},
					{
						Key:         "employee",
						Name:        "Employee",
						Description: "Default role for all staff",
						Permissions: []string{"employees:read", "departments:read"},
					},
				}

				for i := range roles {
					r := roles[i]
					if existing, err := roleRepo.FindByKey(ctx, r.Key); err == nil && existing != nil {
						logger.Info("Role exists, skipping", zap.String("role", r.Key))
						continue
					}
					r.CreatedAt = time.Now()
					r.UpdatedAt = time.Now()
					if err := roleRepo.Create(ctx, &r); err != nil {
						logger.Fatal("Failed to create role", zap.String("role", r.Key), zap.Error(err))
					}
					logger.Info("Role created", zap.String("role", r.Key))
				}

				// 2. Departments
				engineering := &department.Department{
					Name:      "Engineering",
					Code:      "ENG",
					Active:    true,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				people := &department.Department{
					Name:      "People",
					Code:      "PPL",
					Active:    true,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				for _, d := range []*department.Department{engineering, people} {
					if err := deptRepo.Create(ctx, d); err != nil {
						logger.Fatal("Failed to create department", zap.String("department", d.Code), zap.Error(err))
					}
					logger.Info("Department created", zap.String("department", d.Code))
				}

				// 3. Employees
				hash := func(password string) string {
					h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
					if err != nil {
						logger.Fatal("Failed to hash password", zap.Error(err))
					}
					return string(h)
				}

				newEmployee := func(no, first, last, email, position string, roleKeys []string, deptID, managerID *primitive.ObjectID) *employee.Employee {
					hired := time.Now().AddDate(-1, 0, 0)
					return &employee.Employee{
						EmployeeNo:   no,
						FirstName:    first,
						LastName:     last,
						Email:        email,
						PasswordHash: hash("changeme123"),
						Position:     position,
						DepartmentID: deptID,
						ManagerID:    managerID,
						RoleKeys:     roleKeys,
						Active:       true,
						HiredAt:      &hired,
						CreatedAt:    time.Now(),
						UpdatedAt:    time.Now(),
					}
				}

				create := func(emp *employee.Employee) *employee.Employee {
					if existing, err := empRepo.FindByEmail(ctx, emp.Email); err == nil && existing != nil {
						logger.Info("Employee exists, skipping", zap.String("email", emp.Email))
						return existing
					}
					if err := empRepo.Create(ctx, emp); err != nil {
						logger.Fatal("Failed to create employee", zap.String("email", emp.Email), zap.Error(err))
					}
					logger.Info("Employee created", zap.String("email", emp.Email))
					return emp
				}

				admin := create(newEmployee("EMP-0001", "Ada", "Moreno", "admin@example.com", "Head of People",
					[]string{role.KeySuperAdmin, role.KeyHRAdmin}, &people.ID, nil))

				create(newEmployee("EMP-0002", "Noah", "Fischer", "hr.ops@example.com", "HR Operations Specialist",
					[]string{"hr_ops", "employee"}, &people.ID, &admin.ID))

				engHead := create(newEmployee("EMP-0003", "Priya", "Natarajan", "eng.head@example.com", "VP Engineering",
					[]string{"employee"}, &engineering.ID, &admin.ID))

				manager := create(newEmployee("EMP-0004", "Tomas", "Keller", "eng.manager@example.com", "Engineering Manager",
					[]string{"employee"}, &engineering.ID, &engHead.ID))

				create(newEmployee("EMP-0005", "Lena", "Okafor", "dev@example.com", "Software Engineer",
					[]string{"employee"}, &engineering.ID, &manager.ID))

				// Department head links need the head employees to exist first.
				engineering.HeadID = &engHead.ID
				if err := deptRepo.Update(ctx, engineering.ID.Hex(), engineering); err != nil {
					logger.Error("Failed to set engineering head", zap.Error(err))
				}
				people.HeadID = &admin.ID
				if err := deptRepo.Update(ctx, people.ID.Hex(), people); err != nil {
					logger.Error("Failed to set people head", zap.Error(err))
				}

				// 4. Workflow rules. The short-leave rule carries a
				// condition so it beats the default for requests of a
				// week or less.
				rules := []workflow.WorkflowRule{
					{
						WorkflowType: workflow.TypeLeaveApproval,
						Name:         "Short leave, manager only",
						Active:       true,
						Conditions: []common_models.RuleCondition{
							{Field: "days", Operator: "lte", Value: 5},
						},
						Steps: []workflow.StepTemplate{
							{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), AutoApproveAfterHours: hoursPtr(48)},
						},
					},
					{
						WorkflowType: workflow.TypeLeaveApproval,
						Name:         "Default leave approval",
						Active:       true,
						Steps: []workflow.StepTemplate{
							{Order: 1, Name: "Manager review", Approver: directory.DirectManager(), AutoApproveAfterHours: hoursPtr(72)},
							{Order: 2, Name: "Department head review", Approver: directory.DepartmentHead(), CanSkip: true, AutoApproveAfterHours: hoursPtr(72)},
							{Order: 3, Name: "HR sign-off", Approver: directory.SpecificRole("hr_ops")},
						},
					},
				}

				existing, err := workflowRepo.ListActiveByType(ctx, workflow.TypeLeaveApproval)
				if err != nil {
					logger.Fatal("Failed to list workflow rules", zap.Error(err))
				}
				if len(existing) > 0 {
					logger.Info("Workflow rules exist, skipping", zap.Int("count", len(existing)))
				} else {
					for _, rule := range rules {
						rule.CreatedAt = time.Now()
						rule.UpdatedAt = time.Now()
						if err := rule.Validate(); err != nil {
							logger.Fatal("Invalid seed rule", zap.String("rule", rule.Name), zap.Error(err))
						}
						if err := workflowRepo.Create(ctx, rule); err != nil {
							logger.Fatal("Failed to create workflow rule", zap.String("rule", rule.Name), zap.Error(err))
						}
						logger.Info("Workflow rule created", zap.String("rule", rule.Name))
					}
				}

				logger.Info("✅ Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			role.NewRoleRepository,
			department.NewDepartmentRepository,
			employee.NewEmployeeRepository,
			workflow.NewWorkflowRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
