package employee

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EmployeeApi struct {
	controller  *EmployeeController
	roleService middleware.RoleService
	config      *config.Config
}

func NewEmployeeApi(controller *EmployeeController, roleService middleware.RoleService, config *config.Config) *EmployeeApi {
	return &EmployeeApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *EmployeeApi) Setup(app *fiber.App) {
	employees := app.Group("/api/employees", middleware.AuthMiddleware(h.config.SkipAuth))

	employees.Post("/", middleware.RequirePermission(h.roleService, "employees:create"), h.controller.CreateEmployee)
	employees.Get("/", h.controller.ListEmployees)
	employees.Get("/:id", h.controller.GetEmployee)
	employees.Put("/:id", middleware.RequirePermission(h.roleService, "employees:update"), h.controller.UpdateEmployee)
	employees.Post("/:id/deactivate", middleware.RequirePermission(h.roleService, "employees:update"), h.controller.DeactivateEmployee)
}
