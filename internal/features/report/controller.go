package report

import (
	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

// ExportApprovalHistory godoc
// @Summary Export a subject's approval history as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string true "Subject type"
// @Param id query string true "Subject ID"
// @Success 200 {file} binary
// @Router /api/reports/approval-history [get]
func (c *ReportController) ExportApprovalHistory(ctx *fiber.Ctx) error {
	subjectType := ctx.Query("type")
	subjectID := ctx.Query("id")
	if subjectType == "" || subjectID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query params 'type' and 'id' are required"})
	}

	data, filename, err := c.Service.ExportApprovalHistory(ctx.UserContext(), subjectType, subjectID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}

// ExportEmployeeRoster godoc
// @Summary Export the employee roster as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/reports/roster [get]
func (c *ReportController) ExportEmployeeRoster(ctx *fiber.Ctx) error {
	data, filename, err := c.Service.ExportEmployeeRoster(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}
