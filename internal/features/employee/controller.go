package employee

import (
	"github.com/gofiber/fiber/v2"
)

type EmployeeController struct {
	Service EmployeeService
}

func NewEmployeeController(service EmployeeService) *EmployeeController {
	return &EmployeeController{Service: service}
}

type CreateEmployeeRequest struct {
	Employee
	Password string `json:"password"`
}

// CreateEmployee godoc
// @Summary Create an employee
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body CreateEmployeeRequest true "Employee"
// @Success 201 {object} map[string]string
// @Router /api/employees [post]
func (c *EmployeeController) CreateEmployee(ctx *fiber.Ctx) error {
	var input CreateEmployeeRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateEmployee(ctx.UserContext(), &input.Employee, input.Password); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"id": input.ID.Hex()})
}

// GetEmployee godoc
// @Summary Get an employee by ID
// @Tags employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} Employee
// @Failure 404 {object} map[string]string
// @Router /api/employees/{id} [get]
func (c *EmployeeController) GetEmployee(ctx *fiber.Ctx) error {
	emp, err := c.Service.GetEmployee(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if emp == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
	}
	return ctx.JSON(emp)
}

// ListEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Param active query bool false "Filter by active flag"
// @Success 200 {array} Employee
// @Router /api/employees [get]
func (c *EmployeeController) ListEmployees(ctx *fiber.Ctx) error {
	filter := map[string]interface{}{}
	if active := ctx.Query("active"); active != "" {
		filter["active"] = active == "true"
	}

	emps, err := c.Service.ListEmployees(ctx.UserContext(), filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(emps)
}

// UpdateEmployee godoc
// @Summary Update an employee
// @Tags employees
// @Accept json
// @Param id path string true "Employee ID"
// @Param employee body Employee true "Employee"
// @Success 200 {object} map[string]string
// @Router /api/employees/{id} [put]
func (c *EmployeeController) UpdateEmployee(ctx *fiber.Ctx) error {
	var input Employee
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateEmployee(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Employee updated successfully"})
}

// DeactivateEmployee godoc
// @Summary Deactivate an employee
// @Tags employees
// @Param id path string true "Employee ID"
// @Success 200 {object} map[string]string
// @Router /api/employees/{id}/deactivate [post]
func (c *EmployeeController) DeactivateEmployee(ctx *fiber.Ctx) error {
	if err := c.Service.DeactivateEmployee(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Employee deactivated"})
}
