package department

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *Department) error
	GetByID(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, id string, dept *Department) error
	Delete(ctx context.Context, id string) error
}

type DepartmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDepartmentRepository(mongodb *database.MongodbDB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		Collection: mongodb.DB.Collection("departments"),
	}
}

func (r *DepartmentRepositoryImpl) Create(ctx context.Context, dept *Department) error {
	_, err := r.Collection.InsertOne(ctx, dept)
	return err
}

func (r *DepartmentRepositoryImpl) GetByID(ctx context.Context, id string) (*Department, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var dept Department
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepositoryImpl) List(ctx context.Context) ([]Department, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var depts []Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *DepartmentRepositoryImpl) Update(ctx context.Context, id string, dept *Department) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":       dept.Name,
			"code":       dept.Code,
			"head_id":    dept.HeadID,
			"parent_id":  dept.ParentID,
			"active":     dept.Active,
			"updated_at": time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *DepartmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
