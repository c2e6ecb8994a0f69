package directory

import "fmt"

// ApproverType enumerates how a workflow step finds its approver.
type ApproverType string

const (
	ApproverDirectManager    ApproverType = "DIRECT_MANAGER"
	ApproverDepartmentHead   ApproverType = "DEPARTMENT_HEAD"
	ApproverHRAdmin          ApproverType = "HR_ADMIN"
	ApproverSpecificRole     ApproverType = "SPECIFIC_ROLE"
	ApproverSpecificEmployee ApproverType = "SPECIFIC_EMPLOYEE"
)

// ApproverSpec is the tagged variant form of an abstract approver: the
// reference fields are meaningful only for the type that demands them.
// Use the constructors so invalid combinations cannot be built in code;
// Validate covers specs decoded from storage or request bodies.
type ApproverSpec struct {
	Type       ApproverType `bson:"type" json:"type"`
	RoleKey    string       `bson:"role_key,omitempty" json:"role_key,omitempty"`
	EmployeeID string       `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
}

func DirectManager() ApproverSpec {
	return ApproverSpec{Type: ApproverDirectManager}
}

func DepartmentHead() ApproverSpec {
	return ApproverSpec{Type: ApproverDepartmentHead}
}

func HRAdmin() ApproverSpec {
	return ApproverSpec{Type: ApproverHRAdmin}
}

func SpecificRole(roleKey string) ApproverSpec {
	return ApproverSpec{Type: ApproverSpecificRole, RoleKey: roleKey}
}

func SpecificEmployee(employeeID string) ApproverSpec {
	return ApproverSpec{Type: ApproverSpecificEmployee, EmployeeID: employeeID}
}

// Validate enforces the reference-required-iff-type-demands-it pairing.
func (s ApproverSpec) Validate() error {
	switch s.Type {
	case ApproverSpecificRole:
		if s.RoleKey == "" {
			return fmt.Errorf("approver type %s requires a role key", s.Type)
		}
		if s.EmployeeID != "" {
			return fmt.Errorf("approver type %s forbids an employee reference", s.Type)
		}
	case ApproverSpecificEmployee:
		if s.EmployeeID == "" {
			return fmt.Errorf("approver type %s requires an employee reference", s.Type)
		}
		if s.RoleKey != "" {
			return fmt.Errorf("approver type %s forbids a role key", s.Type)
		}
	case ApproverDirectManager, ApproverDepartmentHead, ApproverHRAdmin:
		if s.RoleKey != "" || s.EmployeeID != "" {
			return fmt.Errorf("approver type %s forbids reference fields", s.Type)
		}
	default:
		return fmt.Errorf("unknown approver type: %q", s.Type)
	}
	return nil
}

// ApproverIdentity is a concrete approver, copied by value into
// resolved steps so later org-chart edits never reach in-flight chains.
type ApproverIdentity struct {
	EmployeeID string `bson:"employee_id" json:"employee_id"`
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
}
