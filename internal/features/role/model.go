package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Well-known role keys referenced by the workflow engine.
const (
	KeyHRAdmin    = "hr_admin"
	KeySuperAdmin = "super_admin"
)

type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key         string             `bson:"key" json:"key"` // stable machine key, e.g. "hr_admin"
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Permissions []string           `bson:"permissions" json:"permissions"`
	IsSystem    bool               `bson:"is_system" json:"is_system"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
