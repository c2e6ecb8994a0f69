package department

import (
	"github.com/gofiber/fiber/v2"
)

type DepartmentController struct {
	Service DepartmentService
}

func NewDepartmentController(service DepartmentService) *DepartmentController {
	return &DepartmentController{Service: service}
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Param department body Department true "Department"
// @Success 201 {object} map[string]string
// @Router /api/departments [post]
func (c *DepartmentController) CreateDepartment(ctx *fiber.Ctx) error {
	var input Department
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateDepartment(ctx.UserContext(), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"id": input.ID.Hex()})
}

// GetDepartment godoc
// @Summary Get a department by ID
// @Tags departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} Department
// @Failure 404 {object} map[string]string
// @Router /api/departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *fiber.Ctx) error {
	dept, err := c.Service.GetDepartment(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if dept == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Department not found"})
	}
	return ctx.JSON(dept)
}

// ListDepartments godoc
// @Summary List departments
// @Tags departments
// @Produce json
// @Success 200 {array} Department
// @Router /api/departments [get]
func (c *DepartmentController) ListDepartments(ctx *fiber.Ctx) error {
	depts, err := c.Service.ListDepartments(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(depts)
}

// UpdateDepartment godoc
// @Summary Update a department
// @Tags departments
// @Accept json
// @Param id path string true "Department ID"
// @Param department body Department true "Department"
// @Success 200 {object} map[string]string
// @Router /api/departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *fiber.Ctx) error {
	var input Department
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDepartment(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Department updated successfully"})
}

// DeleteDepartment godoc
// @Summary Delete a department
// @Tags departments
// @Param id path string true "Department ID"
// @Success 204
// @Router /api/departments/{id} [delete]
func (c *DepartmentController) DeleteDepartment(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDepartment(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
