package workflow

import (
	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

// CreateRule godoc
// @Summary Create a workflow rule
// @Description Create a new approval workflow rule with its step templates
// @Tags workflows
// @Accept json
// @Produce json
// @Param rule body WorkflowRule true "Workflow Rule"
// @Success 201 {object} WorkflowRule
// @Failure 422 {object} map[string]string "Validation error"
// @Router /api/workflows [post]
func (c *WorkflowController) CreateRule(ctx *fiber.Ctx) error {
	var input WorkflowRule
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rule, err := c.Service.CreateRule(ctx.UserContext(), input)
	if err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(rule)
}

// GetRule godoc
// @Summary Get a workflow rule
// @Tags workflows
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} WorkflowRule
// @Failure 404 {object} map[string]string
// @Router /api/workflows/{id} [get]
func (c *WorkflowController) GetRule(ctx *fiber.Ctx) error {
	rule, err := c.Service.GetRule(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if rule == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workflow rule not found"})
	}
	return ctx.JSON(rule)
}

// ListRules godoc
// @Summary List workflow rules
// @Tags workflows
// @Produce json
// @Success 200 {array} WorkflowRule
// @Router /api/workflows [get]
func (c *WorkflowController) ListRules(ctx *fiber.Ctx) error {
	rules, err := c.Service.ListRules(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(rules)
}

// UpdateRule godoc
// @Summary Update a workflow rule
// @Description Update a rule; approvals already materialized keep their frozen chains
// @Tags workflows
// @Accept json
// @Param id path string true "Rule ID"
// @Param rule body WorkflowRule true "Workflow Rule"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string "Validation error"
// @Router /api/workflows/{id} [put]
func (c *WorkflowController) UpdateRule(ctx *fiber.Ctx) error {
	var input WorkflowRule
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateRule(ctx.UserContext(), ctx.Params("id"), input); err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Workflow rule updated successfully"})
}

// DeleteRule godoc
// @Summary Delete a workflow rule
// @Tags workflows
// @Param id path string true "Rule ID"
// @Success 204
// @Router /api/workflows/{id} [delete]
func (c *WorkflowController) DeleteRule(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteRule(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
