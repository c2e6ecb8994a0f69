package automation

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AutomationApi struct {
	controller  *AutomationController
	roleService middleware.RoleService
	config      *config.Config
}

func NewAutomationApi(controller *AutomationController, roleService middleware.RoleService, config *config.Config) *AutomationApi {
	return &AutomationApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *AutomationApi) Setup(app *fiber.App) {
	rules := app.Group("/api/automation", middleware.AuthMiddleware(h.config.SkipAuth))

	rules.Post("/", middleware.RequirePermission(h.roleService, "automation:create"), h.controller.CreateRule)
	rules.Get("/", middleware.RequirePermission(h.roleService, "automation:read"), h.controller.ListRules)
	rules.Post("/test", middleware.RequirePermission(h.roleService, "automation:create"), h.controller.TestScript)
	rules.Get("/:id", middleware.RequirePermission(h.roleService, "automation:read"), h.controller.GetRule)
	rules.Put("/:id", middleware.RequirePermission(h.roleService, "automation:update"), h.controller.UpdateRule)
	rules.Delete("/:id", middleware.RequirePermission(h.roleService, "automation:delete"), h.controller.DeleteRule)
}
