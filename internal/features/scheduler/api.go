package scheduler

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchedulerApi struct {
	controller  *SchedulerController
	roleService middleware.RoleService
	config      *config.Config
}

func NewSchedulerApi(controller *SchedulerController, roleService middleware.RoleService, config *config.Config) *SchedulerApi {
	return &SchedulerApi{
		controller:  controller,
		roleService: roleService,
		config:      config,
	}
}

func (h *SchedulerApi) Setup(app *fiber.App) {
	jobs := app.Group("/api/scheduler", middleware.AuthMiddleware(h.config.SkipAuth))
	jobs.Post("/sweep", middleware.RequirePermission(h.roleService, "scheduler:run"), h.controller.TriggerSweep)
}
