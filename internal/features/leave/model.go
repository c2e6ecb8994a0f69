package leave

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaveType string

const (
	LeaveAnnual LeaveType = "ANNUAL"
	LeaveSick   LeaveType = "SICK"
	LeaveUnpaid LeaveType = "UNPAID"
)

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "APPROVED"
	LeaveRejected  LeaveStatus = "REJECTED"
	LeaveCancelled LeaveStatus = "CANCELLED"
)

// LeaveRequest is the engine's first consumer: creating one opens an
// approval instance, and the instance's terminal event closes it.
type LeaveRequest struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID         string             `bson:"employee_id" json:"employee_id"`
	Type               LeaveType          `bson:"type" json:"type"`
	StartDate          time.Time          `bson:"start_date" json:"start_date"`
	EndDate            time.Time          `bson:"end_date" json:"end_date"`
	Days               int                `bson:"days" json:"days"`
	Reason             string             `bson:"reason" json:"reason"`
	Status             LeaveStatus        `bson:"status" json:"status"`
	ApprovalInstanceID string             `bson:"approval_instance_id" json:"approval_instance_id"`
	RevisionRequested  bool               `bson:"revision_requested" json:"revision_requested"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *LeaveRequest) Validate() error {
	switch r.Type {
	case LeaveAnnual, LeaveSick, LeaveUnpaid:
	default:
		return errors.New("unknown leave type")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return errors.New("end date precedes start date")
	}
	return nil
}

// DurationDays counts calendar days, inclusive of both ends.
func (r *LeaveRequest) DurationDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
