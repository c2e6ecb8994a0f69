package workflow

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WorkflowRepository interface {
	Create(ctx context.Context, rule WorkflowRule) error
	GetByID(ctx context.Context, id string) (*WorkflowRule, error)
	ListActiveByType(ctx context.Context, workflowType WorkflowType) ([]WorkflowRule, error)
	List(ctx context.Context) ([]WorkflowRule, error)
	Update(ctx context.Context, id string, rule WorkflowRule) error
	Delete(ctx context.Context, id string) error
}

type WorkflowRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewWorkflowRepository(mongodb *database.MongodbDB) WorkflowRepository {
	return &WorkflowRepositoryImpl{
		Collection: mongodb.DB.Collection("workflow_rules"),
	}
}

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, rule WorkflowRule) error {
	_, err := r.Collection.InsertOne(ctx, rule)
	return err
}

func (r *WorkflowRepositoryImpl) GetByID(ctx context.Context, id string) (*WorkflowRule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var rule WorkflowRule
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *WorkflowRepositoryImpl) ListActiveByType(ctx context.Context, workflowType WorkflowType) ([]WorkflowRule, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"workflow_type": workflowType, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []WorkflowRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *WorkflowRepositoryImpl) List(ctx context.Context) ([]WorkflowRule, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []WorkflowRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, id string, rule WorkflowRule) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":       rule.Name,
			"active":     rule.Active,
			"conditions": rule.Conditions,
			"steps":      rule.Steps,
			"updated_at": time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *WorkflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
