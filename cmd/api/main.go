package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	common_api "go-hrm/internal/common/api"
	"go-hrm/internal/config"
	"go-hrm/internal/database"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/audit"
	"go-hrm/internal/features/auth"
	"go-hrm/internal/features/automation"
	"go-hrm/internal/features/department"
	"go-hrm/internal/features/directory"
	"go-hrm/internal/features/employee"
	"go-hrm/internal/features/leave"
	"go-hrm/internal/features/notification"
	"go-hrm/internal/features/report"
	"go-hrm/internal/features/role"
	"go-hrm/internal/features/scheduler"
	"go-hrm/internal/features/system"
	"go-hrm/internal/features/warehouse"
	"go-hrm/internal/features/workflow"
	"go-hrm/internal/logger"
	"go-hrm/internal/middleware"
	"go-hrm/pkg/utils"

	_ "go-hrm/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// eventFanout relays committed approval events to every registered
// sink. Sinks register after construction, which breaks the cycle
// between the approval service and the consumers that call back into
// it.
type eventFanout struct {
	mu    sync.RWMutex
	sinks []approval.EventSink
}

func (f *eventFanout) Publish(event approval.Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sink := range f.sinks {
		sink.Publish(event)
	}
}

func (f *eventFanout) Register(sinks ...approval.EventSink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sinks...)
}

// actorLookupAdapter lets the audit feature resolve actor names
// without importing the employee feature.
type actorLookupAdapter struct {
	repo employee.EmployeeRepository
}

func (a *actorLookupAdapter) LookupNames(ctx context.Context, ids []string) (map[string]string, error) {
	employees, err := a.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.ID.Hex()] = emp.FullName()
	}
	return names, nil
}

// @title           HRM Approval Workflow API
// @version         1.0
// @description     Configurable multi-step approval workflows for HR processes.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,

			logger.NewLogger,

			NewFiberServer,

			database.NewDatabase,

			// Repositories
			audit.NewAuditRepository,
			role.NewRoleRepository,
			department.NewDepartmentRepository,
			employee.NewEmployeeRepository,
			workflow.NewWorkflowRepository,
			approval.NewApprovalRepository,
			notification.NewNotificationRepository,
			leave.NewLeaveRepository,
			automation.NewAutomationRepository,

			// Services
			audit.NewAuditService,
			role.NewRoleService,
			department.NewDepartmentService,
			employee.NewEmployeeService,
			directory.NewDirectoryService,
			workflow.NewRuleSelector,
			workflow.NewWorkflowService,
			approval.NewStepSequencer,
			approval.NewApprovalService,
			notification.NewNotificationService,
			notification.NewEventHub,
			leave.NewLeaveService,
			auth.NewAuthService,
			automation.NewAutomationService,
			warehouse.NewWarehouseSyncService,
			scheduler.NewSchedulerService,
			report.NewReportService,

			// Interface adapters to break circular dependencies
			func() *eventFanout { return &eventFanout{} },
			func(f *eventFanout) approval.EventSink { return f },
			func(s role.RoleService) middleware.RoleService { return s },
			func(r employee.EmployeeRepository) audit.ActorLookup { return &actorLookupAdapter{repo: r} },

			// Controllers
			auth.NewAuthController,
			role.NewRoleController,
			department.NewDepartmentController,
			employee.NewEmployeeController,
			workflow.NewWorkflowController,
			approval.NewApprovalController,
			notification.NewNotificationController,
			leave.NewLeaveController,
			automation.NewAutomationController,
			scheduler.NewSchedulerController,
			report.NewReportController,
			audit.NewAuditController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(role.NewRoleApi),
			AsRoute(department.NewDepartmentApi),
			AsRoute(employee.NewEmployeeApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(leave.NewLeaveApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(scheduler.NewSchedulerApi),
			AsRoute(report.NewReportApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			// Wire event consumers into the fanout once everything is
			// built.
			func(
				fanout *eventFanout,
				notifications notification.NotificationService,
				hub *notification.EventHub,
				automations automation.AutomationService,
				leaves leave.LeaveService,
			) {
				fanout.Register(notifications, hub, automations, leaves)
			},
			func(lc fx.Lifecycle, schedulerService scheduler.SchedulerService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return schedulerService.InitializeScheduler()
					},
					OnStop: func(ctx context.Context) error {
						return schedulerService.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
