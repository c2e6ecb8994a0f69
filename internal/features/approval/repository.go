package approval

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalRepository interface {
	Create(ctx context.Context, instance *ApprovalInstance) error
	GetByID(ctx context.Context, id string) (*ApprovalInstance, error)
	FindBySubject(ctx context.Context, subjectType, subjectID string) ([]ApprovalInstance, error)
	FindPendingByApprover(ctx context.Context, approverID string) ([]ApprovalInstance, error)
	// FindPendingWithTimeout returns PENDING instances whose current step
	// carries an auto-approve timeout. Deadline math happens in the
	// scheduler; this just narrows the scan.
	FindPendingWithTimeout(ctx context.Context) ([]ApprovalInstance, error)
	// UpdateWithVersion persists the instance only if the stored version
	// still equals the version the caller read, and bumps it by one.
	// Returns ErrVersionConflict when another writer won.
	UpdateWithVersion(ctx context.Context, instance *ApprovalInstance) error
	FindFinalizedSince(ctx context.Context, since time.Time) ([]ApprovalInstance, error)
}

type ApprovalRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewApprovalRepository(mongodb *database.MongodbDB) ApprovalRepository {
	return &ApprovalRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_instances"),
	}
}

func (r *ApprovalRepositoryImpl) Create(ctx context.Context, instance *ApprovalInstance) error {
	_, err := r.Collection.InsertOne(ctx, instance)
	return err
}

func (r *ApprovalRepositoryImpl) GetByID(ctx context.Context, id string) (*ApprovalInstance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var instance ApprovalInstance
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&instance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

func (r *ApprovalRepositoryImpl) FindBySubject(ctx context.Context, subjectType, subjectID string) ([]ApprovalInstance, error) {
	return r.find(ctx, bson.M{"subject.type": subjectType, "subject.id": subjectID})
}

// currentStepExpr evaluates in against the whole step document at the
// current index, bound as $$cur. The element must be selected before
// its subfields: a collapsed path like "$steps.approver.employee_id"
// collects the subfield only from elements that carry it, and with
// omitempty pointers on pre-skipped and no-timeout steps the collected
// array no longer lines up with current_step.
func currentStepExpr(in bson.M) bson.M {
	return bson.M{"$let": bson.M{
		"vars": bson.M{"cur": bson.M{"$arrayElemAt": bson.A{"$steps", "$current_step"}}},
		"in":   in,
	}}
}

func pendingByApproverFilter(approverID string) bson.M {
	return bson.M{"$expr": currentStepExpr(
		bson.M{"$eq": bson.A{"$$cur.approver.employee_id", approverID}},
	)}
}

func pendingWithTimeoutFilter() bson.M {
	// Missing compares equal to null in aggregation expressions, so
	// this excludes steps without a timeout as well.
	return bson.M{"$expr": currentStepExpr(
		bson.M{"$ne": bson.A{"$$cur.auto_approve_after_hours", nil}},
	)}
}

func (r *ApprovalRepositoryImpl) FindPendingByApprover(ctx context.Context, approverID string) ([]ApprovalInstance, error) {
	cursor, err := r.Collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": StatusPending}}},
		{{Key: "$match", Value: pendingByApproverFilter(approverID)}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var instances []ApprovalInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *ApprovalRepositoryImpl) FindPendingWithTimeout(ctx context.Context) ([]ApprovalInstance, error) {
	cursor, err := r.Collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": StatusPending}}},
		{{Key: "$match", Value: pendingWithTimeoutFilter()}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var instances []ApprovalInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *ApprovalRepositoryImpl) UpdateWithVersion(ctx context.Context, instance *ApprovalInstance) error {
	readVersion := instance.Version
	instance.Version = readVersion + 1
	instance.UpdatedAt = time.Now()

	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": instance.ID, "version": readVersion},
		bson.M{"$set": bson.M{
			"steps":           instance.Steps,
			"current_step":    instance.CurrentStep,
			"status":          instance.Status,
			"version":         instance.Version,
			"step_entered_at": instance.StepEnteredAt,
			"updated_at":      instance.UpdatedAt,
			"completed_at":    instance.CompletedAt,
		}},
	)
	if err != nil {
		instance.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		instance.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (r *ApprovalRepositoryImpl) FindFinalizedSince(ctx context.Context, since time.Time) ([]ApprovalInstance, error) {
	return r.find(ctx, bson.M{
		"status":       bson.M{"$in": []InstanceStatus{StatusApproved, StatusRejected, StatusCancelled}},
		"completed_at": bson.M{"$gte": since},
	})
}

func (r *ApprovalRepositoryImpl) find(ctx context.Context, filter bson.M) ([]ApprovalInstance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var instances []ApprovalInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}
