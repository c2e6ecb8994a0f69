package department

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DepartmentApi struct {
	controller  *DepartmentController
	roleService middleware.RoleService
	config      *config.Config
}

func NewDepartmentApi(controller *DepartmentController, roleService middleware.RoleService, config *config.Config) *DepartmentApi {
	return &DepartmentApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *DepartmentApi) Setup(app *fiber.App) {
	depts := app.Group("/api/departments", middleware.AuthMiddleware(h.config.SkipAuth))

	depts.Post("/", middleware.RequirePermission(h.roleService, "departments:create"), h.controller.CreateDepartment)
	depts.Get("/", h.controller.ListDepartments)
	depts.Get("/:id", h.controller.GetDepartment)
	depts.Put("/:id", middleware.RequirePermission(h.roleService, "departments:update"), h.controller.UpdateDepartment)
	depts.Delete("/:id", middleware.RequirePermission(h.roleService, "departments:delete"), h.controller.DeleteDepartment)
}
