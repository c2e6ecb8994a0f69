package automation

import (
	"context"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AutomationRepository interface {
	Create(ctx context.Context, rule *AutomationRule) error
	GetByID(ctx context.Context, id string) (*AutomationRule, error)
	ListActive(ctx context.Context) ([]AutomationRule, error)
	List(ctx context.Context) ([]AutomationRule, error)
	Update(ctx context.Context, rule *AutomationRule) error
	Delete(ctx context.Context, id string) error
}

type AutomationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAutomationRepository(mongodb *database.MongodbDB) AutomationRepository {
	return &AutomationRepositoryImpl{
		Collection: mongodb.DB.Collection("automation_rules"),
	}
}

func (r *AutomationRepositoryImpl) Create(ctx context.Context, rule *AutomationRule) error {
	_, err := r.Collection.InsertOne(ctx, rule)
	return err
}

func (r *AutomationRepositoryImpl) GetByID(ctx context.Context, id string) (*AutomationRule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var rule AutomationRule
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *AutomationRepositoryImpl) ListActive(ctx context.Context) ([]AutomationRule, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *AutomationRepositoryImpl) List(ctx context.Context) ([]AutomationRule, error) {
	return r.list(ctx, bson.M{})
}

func (r *AutomationRepositoryImpl) list(ctx context.Context, filter bson.M) ([]AutomationRule, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []AutomationRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepositoryImpl) Update(ctx context.Context, rule *AutomationRule) error {
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	return err
}

func (r *AutomationRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
