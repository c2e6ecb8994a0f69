package employee

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EmployeeNo   string              `bson:"employee_no" json:"employee_no"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Position     string              `bson:"position" json:"position"`
	ManagerID    *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`
	RoleKeys     []string            `bson:"role_keys" json:"role_keys"`
	Active       bool                `bson:"active" json:"active"`
	HiredAt      *time.Time          `bson:"hired_at,omitempty" json:"hired_at,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
