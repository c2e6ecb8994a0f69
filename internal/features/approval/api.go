package approval

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

// Decision routes carry no permission middleware: the service itself
// enforces that only the current approver or the requester may act.
func (h *ApprovalApi) Setup(app *fiber.App) {
	approvals := app.Group("/api/approvals", middleware.AuthMiddleware(h.config.SkipAuth))

	approvals.Post("/", h.controller.StartApproval)
	approvals.Get("/", h.controller.ListBySubject)
	approvals.Get("/pending", h.controller.ListMyPending)
	approvals.Get("/:id", h.controller.GetStatus)
	approvals.Post("/:id/approve", h.controller.Approve)
	approvals.Post("/:id/reject", h.controller.Reject)
	approvals.Post("/:id/request-revision", h.controller.RequestRevision)
	approvals.Post("/:id/cancel", h.controller.Cancel)
}
