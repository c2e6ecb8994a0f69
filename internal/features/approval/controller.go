package approval

import (
	"context"
	"errors"

	"go-hrm/internal/features/workflow"
	"go-hrm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

type StartApprovalRequest struct {
	WorkflowType workflow.WorkflowType `json:"workflow_type"`
	Subject      SubjectRef            `json:"subject"`
	Context      workflow.RuleContext  `json:"context"`
}

type DecisionRequest struct {
	Comment string `json:"comment"`
}

// StartApproval godoc
// @Summary Start an approval chain
// @Description Select the governing rule, materialize the approver chain and open a new pending instance
// @Tags approvals
// @Accept json
// @Produce json
// @Param request body StartApprovalRequest true "Approval request"
// @Success 201 {object} ApprovalInstance
// @Failure 422 {object} map[string]string "No applicable rule or unresolvable approver"
// @Router /api/approvals [post]
func (c *ApprovalController) StartApproval(ctx *fiber.Ctx) error {
	var input StartApprovalRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	instance, err := c.Service.StartApproval(ctx.UserContext(), input.WorkflowType, input.Subject, claims.EmployeeID, input.Context)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(instance)
}

// GetStatus godoc
// @Summary Get an approval instance
// @Tags approvals
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} ApprovalInstance
// @Failure 404 {object} map[string]string
// @Router /api/approvals/{id} [get]
func (c *ApprovalController) GetStatus(ctx *fiber.Ctx) error {
	instance, err := c.Service.GetStatus(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(instance)
}

// ListBySubject godoc
// @Summary List approval instances for a subject
// @Tags approvals
// @Produce json
// @Param type query string true "Subject type"
// @Param id query string true "Subject ID"
// @Success 200 {array} ApprovalInstance
// @Router /api/approvals [get]
func (c *ApprovalController) ListBySubject(ctx *fiber.Ctx) error {
	subjectType := ctx.Query("type")
	subjectID := ctx.Query("id")
	if subjectType == "" || subjectID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query params 'type' and 'id' are required"})
	}

	instances, err := c.Service.ListBySubject(ctx.UserContext(), subjectType, subjectID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(instances)
}

// ListMyPending godoc
// @Summary List instances waiting on the caller
// @Tags approvals
// @Produce json
// @Success 200 {array} ApprovalInstance
// @Router /api/approvals/pending [get]
func (c *ApprovalController) ListMyPending(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	instances, err := c.Service.ListPendingForApprover(ctx.UserContext(), claims.EmployeeID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(instances)
}

// Approve godoc
// @Summary Approve the current step
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body DecisionRequest false "Optional comment"
// @Success 200 {object} ApprovalInstance
// @Failure 403 {object} map[string]string "Not the current approver"
// @Failure 409 {object} map[string]string "Already finalized or concurrent decision"
// @Router /api/approvals/{id}/approve [post]
func (c *ApprovalController) Approve(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.Service.Approve)
}

// Reject godoc
// @Summary Reject the current step
// @Description Rejection at any step terminates the whole chain
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body DecisionRequest false "Optional reason"
// @Success 200 {object} ApprovalInstance
// @Failure 403 {object} map[string]string "Not the current approver"
// @Failure 409 {object} map[string]string "Already finalized or concurrent decision"
// @Router /api/approvals/{id}/reject [post]
func (c *ApprovalController) Reject(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.Service.Reject)
}

// RequestRevision godoc
// @Summary Request a revision
// @Description Terminates the chain; the requester must resubmit to start a new one
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param request body DecisionRequest false "Optional comment"
// @Success 200 {object} ApprovalInstance
// @Router /api/approvals/{id}/request-revision [post]
func (c *ApprovalController) RequestRevision(ctx *fiber.Ctx) error {
	return c.decide(ctx, c.Service.RequestRevision)
}

type decideFunc func(ctx context.Context, instanceID, actorID string, actorRoles []string, comment string) (*ApprovalInstance, error)

func (c *ApprovalController) decide(ctx *fiber.Ctx, fn decideFunc) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	var input DecisionRequest
	_ = ctx.BodyParser(&input)

	instance, err := fn(ctx.UserContext(), ctx.Params("id"), claims.EmployeeID, claims.Roles, input.Comment)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(instance)
}

// Cancel godoc
// @Summary Cancel a pending approval
// @Description Only the requester can cancel, and only while the instance is pending
// @Tags approvals
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} ApprovalInstance
// @Failure 403 {object} map[string]string "Caller is not the requester"
// @Router /api/approvals/{id}/cancel [post]
func (c *ApprovalController) Cancel(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authentication"})
	}

	instance, err := c.Service.Cancel(ctx.UserContext(), ctx.Params("id"), claims.EmployeeID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(instance)
}

func respondError(ctx *fiber.Ctx, err error) error {
	var unresolvable *UnresolvableApproverError
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotCurrentApprover), errors.Is(err, ErrNotRequester):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyFinalized), errors.Is(err, ErrVersionConflict), errors.Is(err, ErrStepNotDue):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrNoApplicableRule), errors.As(err, &unresolvable):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
