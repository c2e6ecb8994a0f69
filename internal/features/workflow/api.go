package workflow

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller  *WorkflowController
	roleService middleware.RoleService
	config      *config.Config
}

func NewWorkflowApi(controller *WorkflowController, roleService middleware.RoleService, config *config.Config) *WorkflowApi {
	return &WorkflowApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	workflows := app.Group("/api/workflows", middleware.AuthMiddleware(h.config.SkipAuth))

	workflows.Post("/", middleware.RequirePermission(h.roleService, "workflows:create"), h.controller.CreateRule)
	workflows.Get("/", middleware.RequirePermission(h.roleService, "workflows:read"), h.controller.ListRules)
	workflows.Get("/:id", middleware.RequirePermission(h.roleService, "workflows:read"), h.controller.GetRule)
	workflows.Put("/:id", middleware.RequirePermission(h.roleService, "workflows:update"), h.controller.UpdateRule)
	workflows.Delete("/:id", middleware.RequirePermission(h.roleService, "workflows:delete"), h.controller.DeleteRule)
}
