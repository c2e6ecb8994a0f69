package leave

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeaveApi struct {
	controller *LeaveController
	config     *config.Config
}

func NewLeaveApi(controller *LeaveController, config *config.Config) *LeaveApi {
	return &LeaveApi{
		controller: controller,
		config:     config,
	}
}

func (h *LeaveApi) Setup(app *fiber.App) {
	leaves := app.Group("/api/leaves", middleware.AuthMiddleware(h.config.SkipAuth))
	leaves.Post("/", h.controller.CreateLeaveRequest)
	leaves.Get("/", h.controller.ListMyLeaveRequests)
	leaves.Get("/:id", h.controller.GetLeaveRequest)
	leaves.Post("/:id/cancel", h.controller.CancelLeaveRequest)
}
