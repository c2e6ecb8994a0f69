package report

import (
	"context"
	"fmt"
	"time"

	common_models "go-hrm/internal/common/models"
	"go-hrm/internal/features/approval"
	"go-hrm/internal/features/audit"
	"go-hrm/internal/features/employee"

	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	// ExportApprovalHistory renders every approval instance of one
	// subject, one row per resolved step.
	ExportApprovalHistory(ctx context.Context, subjectType, subjectID string) ([]byte, string, error)
	ExportEmployeeRoster(ctx context.Context) ([]byte, string, error)
}

type ReportServiceImpl struct {
	ApprovalRepo approval.ApprovalRepository
	EmployeeRepo employee.EmployeeRepository
	AuditService audit.AuditService
}

func NewReportService(approvalRepo approval.ApprovalRepository, employeeRepo employee.EmployeeRepository, auditService audit.AuditService) ReportService {
	return &ReportServiceImpl{
		ApprovalRepo: approvalRepo,
		EmployeeRepo: employeeRepo,
		AuditService: auditService,
	}
}

var historyColumns = []string{
	"Instance ID", "Workflow Type", "Status", "Requester",
	"Step", "Step Name", "Approver", "Decision", "Comment", "Decided At",
}

func (s *ReportServiceImpl) ExportApprovalHistory(ctx context.Context, subjectType, subjectID string) ([]byte, string, error) {
	instances, err := s.ApprovalRepo.FindBySubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, "", err
	}

	var rows [][]interface{}
	for _, instance := range instances {
		for _, step := range instance.Steps {
			row := []interface{}{
				instance.ID.Hex(),
				string(instance.WorkflowType),
				string(instance.Status),
				instance.RequesterID,
				step.Order,
				step.Name,
			}
			if step.Approver != nil {
				row = append(row, step.Approver.Name)
			} else {
				row = append(row, "")
			}
			if step.Outcome != nil {
				row = append(row, string(step.Outcome.Decision), step.Outcome.Comment, step.Outcome.Timestamp.Format("2006-01-02 15:04:05"))
			} else {
				row = append(row, "", "", "")
			}
			rows = append(rows, row)
		}
	}

	filename := fmt.Sprintf("approval_history_%s_%s.xlsx", subjectType, subjectID)
	data, err := buildWorkbook("Approval History", historyColumns, rows)
	if err != nil {
		return nil, "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReport, "reports", subjectID, map[string]common_models.Change{
		"export": {New: filename},
	})
	return data, filename, nil
}

var rosterColumns = []string{
	"Employee No", "Name", "Email", "Position", "Roles", "Active", "Hired At",
}

func (s *ReportServiceImpl) ExportEmployeeRoster(ctx context.Context) ([]byte, string, error) {
	employees, err := s.EmployeeRepo.List(ctx, map[string]interface{}{})
	if err != nil {
		return nil, "", err
	}

	var rows [][]interface{}
	for _, emp := range employees {
		hiredAt := ""
		if emp.HiredAt != nil {
			hiredAt = emp.HiredAt.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			emp.EmployeeNo,
			emp.FullName(),
			emp.Email,
			emp.Position,
			fmt.Sprintf("%v", emp.RoleKeys),
			emp.Active,
			hiredAt,
		})
	}

	filename := fmt.Sprintf("employee_roster_%s.xlsx", time.Now().Format("2006-01-02"))
	data, err := buildWorkbook("Roster", rosterColumns, rows)
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

func buildWorkbook(sheetName string, columns []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 20)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
