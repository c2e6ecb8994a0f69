package employee

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EmployeeRepository interface {
	Create(ctx context.Context, emp *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByIDs(ctx context.Context, ids []string) ([]Employee, error)
	// FindActiveByRoleKey returns active holders of a role sorted by _id
	// ascending, so callers that pick the first holder do so consistently.
	FindActiveByRoleKey(ctx context.Context, roleKey string) ([]Employee, error)
	List(ctx context.Context, filter map[string]interface{}) ([]Employee, error)
	Update(ctx context.Context, id string, emp *Employee) error
	Deactivate(ctx context.Context, id string) error
}

type EmployeeRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewEmployeeRepository(mongodb *database.MongodbDB) EmployeeRepository {
	return &EmployeeRepositoryImpl{
		Collection: mongodb.DB.Collection("employees"),
	}
}

func (r *EmployeeRepositoryImpl) Create(ctx context.Context, emp *Employee) error {
	_, err := r.Collection.InsertOne(ctx, emp)
	return err
}

func (r *EmployeeRepositoryImpl) GetByID(ctx context.Context, id string) (*Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var emp Employee
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&emp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepositoryImpl) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var emp Employee
	err := r.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&emp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]Employee, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var emps []Employee
	if err = cursor.All(ctx, &emps); err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *EmployeeRepositoryImpl) FindActiveByRoleKey(ctx context.Context, roleKey string) ([]Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"role_keys": roleKey, "active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var emps []Employee
	if err = cursor.All(ctx, &emps); err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *EmployeeRepositoryImpl) List(ctx context.Context, filter map[string]interface{}) ([]Employee, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var emps []Employee
	if err = cursor.All(ctx, &emps); err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *EmployeeRepositoryImpl) Update(ctx context.Context, id string, emp *Employee) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"first_name":    emp.FirstName,
			"last_name":     emp.LastName,
			"email":         emp.Email,
			"position":      emp.Position,
			"manager_id":    emp.ManagerID,
			"department_id": emp.DepartmentID,
			"role_keys":     emp.RoleKeys,
			"active":        emp.Active,
			"updated_at":    time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *EmployeeRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"active": false, "updated_at": time.Now()},
	})
	return err
}
