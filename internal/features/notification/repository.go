package notification

import (
	"context"
	"time"

	"go-hrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	// Upsert inserts the notification unless one with the same
	// (instance, step, decision, recipient) key already exists.
	Upsert(ctx context.Context, notification Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, recipientID string) error
}

type NotificationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewNotificationRepository(mongodb *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{
		Collection: mongodb.DB.Collection("notifications"),
	}
}

func (r *NotificationRepositoryImpl) Upsert(ctx context.Context, notification Notification) error {
	notification.CreatedAt = time.Now()
	filter := bson.M{
		"instance_id":  notification.InstanceID,
		"step_order":   notification.StepOrder,
		"decision":     notification.Decision,
		"recipient_id": notification.RecipientID,
	}
	_, err := r.Collection.UpdateOne(ctx, filter,
		bson.M{"$setOnInsert": notification},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *NotificationRepositoryImpl) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error) {
	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var notifications []Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id string, recipientID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}
