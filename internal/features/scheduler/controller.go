package scheduler

import (
	"github.com/gofiber/fiber/v2"
)

type SchedulerController struct {
	Service SchedulerService
}

func NewSchedulerController(service SchedulerService) *SchedulerController {
	return &SchedulerController{Service: service}
}

// TriggerSweep godoc
// @Summary Run the timeout sweep now
// @Description Auto-approves every pending step whose deadline has passed, without waiting for the next scheduled run
// @Tags scheduler
// @Produce json
// @Success 200 {object} SweepSummary
// @Router /api/scheduler/sweep [post]
func (c *SchedulerController) TriggerSweep(ctx *fiber.Ctx) error {
	summary, err := c.Service.RunTimeoutSweep(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(summary)
}
