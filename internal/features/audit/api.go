package audit

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller  *AuditController
	roleService middleware.RoleService
	config      *config.Config
}

func NewAuditApi(controller *AuditController, roleService middleware.RoleService, config *config.Config) *AuditApi {
	return &AuditApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))
	audit.Get("/", middleware.RequirePermission(h.roleService, "audit:read"), h.controller.ListLogs)
}
