package notification

import (
	"go-hrm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{Service: service}
}

// ListMine godoc
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {array} Notification
// @Router /api/notifications [get]
func (c *NotificationController) ListMine(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	notifications, err := c.Service.ListForRecipient(ctx.UserContext(), claims.EmployeeID, ctx.QueryBool("unread"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(notifications)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	if err := c.Service.MarkRead(ctx.UserContext(), ctx.Params("id"), claims.EmployeeID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Notification marked as read"})
}
