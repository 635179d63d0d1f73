package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

const (
	notificationCollection = "notifications"

	defaultInboxLimit = 50
	maxInboxLimit     = 100
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepo struct {
	coll *mongodrv.Collection
}

func NewNotificationRepo(db *mongodrv.Database) *NotificationRepo {
	if db == nil {
		return &NotificationRepo{}
	}
	return &NotificationRepo{coll: db.Collection(notificationCollection)}
}

func (r *NotificationRepo) Insert(ctx context.Context, n model.Notification) error {
	if r.coll == nil {
		return ErrDatabaseUnavailable
	}
	if strings.TrimSpace(n.ID) == "" || strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("invalid notification payload")
	}
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if r.coll == nil {
		return nil, ErrDatabaseUnavailable
	}
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}

	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]model.Notification, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags one notification of userID as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	if r.coll == nil {
		return ErrDatabaseUnavailable
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
