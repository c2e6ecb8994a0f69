package leave

import (
	"go-hrm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type LeaveController struct {
	Service LeaveService
}

func NewLeaveController(service LeaveService) *LeaveController {
	return &LeaveController{Service: service}
}

// CreateLeaveRequest godoc
// @Summary Submit a leave request
// @Description Creates the request and opens its approval chain
// @Tags leaves
// @Accept json
// @Produce json
// @Param request body LeaveRequest true "Leave request"
// @Success 201 {object} LeaveRequest
// @Failure 422 {object} map[string]string
// @Router /api/leaves [post]
func (c *LeaveController) CreateLeaveRequest(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	var request LeaveRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	request.EmployeeID = claims.EmployeeID

	if err := c.Service.CreateLeaveRequest(ctx.UserContext(), &request); err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(request)
}

// GetLeaveRequest godoc
// @Summary Get a leave request
// @Tags leaves
// @Produce json
// @Param id path string true "Leave request ID"
// @Success 200 {object} LeaveRequest
// @Failure 404 {object} map[string]string
// @Router /api/leaves/{id} [get]
func (c *LeaveController) GetLeaveRequest(ctx *fiber.Ctx) error {
	request, err := c.Service.GetLeaveRequest(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if request == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Leave request not found"})
	}
	return ctx.JSON(request)
}

// ListMyLeaveRequests godoc
// @Summary List the caller's leave requests
// @Tags leaves
// @Produce json
// @Success 200 {array} LeaveRequest
// @Router /api/leaves [get]
func (c *LeaveController) ListMyLeaveRequests(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	requests, err := c.Service.ListByEmployee(ctx.UserContext(), claims.EmployeeID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(requests)
}

// CancelLeaveRequest godoc
// @Summary Cancel a leave request
// @Description Cancels both the request and its pending approval chain
// @Tags leaves
// @Param id path string true "Leave request ID"
// @Success 200 {object} map[string]string
// @Router /api/leaves/{id}/cancel [post]
func (c *LeaveController) CancelLeaveRequest(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	if err := c.Service.CancelLeaveRequest(ctx.UserContext(), ctx.Params("id"), claims.EmployeeID); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Leave request cancelled"})
}
