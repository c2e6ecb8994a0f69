package automation

import (
	"go-hrm/internal/features/approval"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AutomationController struct {
	Service AutomationService
}

func NewAutomationController(service AutomationService) *AutomationController {
	return &AutomationController{Service: service}
}

// CreateRule godoc
// @Summary Create an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param rule body AutomationRule true "Automation rule"
// @Success 201 {object} AutomationRule
// @Failure 422 {object} map[string]string
// @Router /api/automation [post]
func (c *AutomationController) CreateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	rule.ID = primitive.NewObjectID()

	if err := c.Service.CreateRule(ctx.UserContext(), &rule); err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(rule)
}

// ListRules godoc
// @Summary List automation rules
// @Tags automation
// @Produce json
// @Success 200 {array} AutomationRule
// @Router /api/automation [get]
func (c *AutomationController) ListRules(ctx *fiber.Ctx) error {
	rules, err := c.Service.ListRules(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(rules)
}

// GetRule godoc
// @Summary Get an automation rule
// @Tags automation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} AutomationRule
// @Failure 404 {object} map[string]string
// @Router /api/automation/{id} [get]
func (c *AutomationController) GetRule(ctx *fiber.Ctx) error {
	rule, err := c.Service.GetRule(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if rule == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Automation rule not found"})
	}
	return ctx.JSON(rule)
}

// UpdateRule godoc
// @Summary Update an automation rule
// @Tags automation
// @Accept json
// @Param id path string true "Rule ID"
// @Param rule body AutomationRule true "Automation rule"
// @Success 200 {object} map[string]string
// @Router /api/automation/{id} [put]
func (c *AutomationController) UpdateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	oid, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rule id"})
	}
	rule.ID = oid

	if err := c.Service.UpdateRule(ctx.UserContext(), &rule); err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Automation rule updated"})
}

// DeleteRule godoc
// @Summary Delete an automation rule
// @Tags automation
// @Param id path string true "Rule ID"
// @Success 204
// @Router /api/automation/{id} [delete]
func (c *AutomationController) DeleteRule(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteRule(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

type TestScriptRequest struct {
	Script string         `json:"script"`
	Event  approval.Event `json:"event"`
}

// TestScript godoc
// @Summary Run a script against a synthetic event
// @Tags automation
// @Accept json
// @Param request body TestScriptRequest true "Script and event"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/automation/test [post]
func (c *AutomationController) TestScript(ctx *fiber.Ctx) error {
	var input TestScriptRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.RunScript(ctx.UserContext(), input.Script, input.Event); err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Script executed"})
}
