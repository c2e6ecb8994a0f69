package report

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller  *ReportController
	roleService middleware.RoleService
	config      *config.Config
}

func NewReportApi(controller *ReportController, roleService middleware.RoleService, config *config.Config) *ReportApi {
	return &ReportApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *ReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports", middleware.AuthMiddleware(h.config.SkipAuth))
	reports.Get("/approval-history", middleware.RequirePermission(h.roleService, "reports:read"), h.controller.ExportApprovalHistory)
	reports.Get("/roster", middleware.RequirePermission(h.roleService, "reports:read"), h.controller.ExportEmployeeRoster)
}
