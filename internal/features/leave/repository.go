package leave

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LeaveRepository interface {
	Create(ctx context.Context, request *LeaveRequest) error
	GetByID(ctx context.Context, id string) (*LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id string, status LeaveStatus, revisionRequested bool) error
	// AttachApproval links the request to its approval instance after
	// the instance exists.
	AttachApproval(ctx context.Context, id string, instanceID string) error
	Delete(ctx context.Context, id string) error
}

type LeaveRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewLeaveRepository(mongodb *database.MongodbDB) LeaveRepository {
	return &LeaveRepositoryImpl{
		Collection: mongodb.DB.Collection("leave_requests"),
	}
}

func (r *LeaveRepositoryImpl) Create(ctx context.Context, request *LeaveRequest) error {
	_, err := r.Collection.InsertOne(ctx, request)
	return err
}

func (r *LeaveRepositoryImpl) GetByID(ctx context.Context, id string) (*LeaveRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var request LeaveRequest
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *LeaveRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"employee_id": employeeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requests []LeaveRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *LeaveRepositoryImpl) AttachApproval(ctx context.Context, id string, instanceID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"approval_instance_id": instanceID,
			"updated_at":           time.Now(),
		}},
	)
	return err
}

func (r *LeaveRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *LeaveRepositoryImpl) UpdateStatus(ctx context.Context, id string, status LeaveStatus, revisionRequested bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"status":             status,
			"revision_requested": revisionRequested,
			"updated_at":         time.Now(),
		}},
	)
	return err
}
