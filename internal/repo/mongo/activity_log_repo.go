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
	activityLogCollection = "admin_logs"

	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

var ErrDatabaseUnavailable = errors.New("mongo database is nil")

type ActivityLogRepo struct {
	coll *mongodrv.Collection
}

func NewActivityLogRepo(db *mongodrv.Database) *ActivityLogRepo {
	if db == nil {
		return &ActivityLogRepo{}
	}
	return &ActivityLogRepo{coll: db.Collection(activityLogCollection)}
}

func (r *ActivityLogRepo) Insert(ctx context.Context, entry model.ActivityLog) error {
	if r.coll == nil {
		return ErrDatabaseUnavailable
	}
	if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.AdminID) == "" {
		return fmt.Errorf("invalid activity log payload")
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// Latest returns the newest entries first.
func (r *ActivityLogRepo) Latest(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if r.coll == nil {
		return nil, ErrDatabaseUnavailable
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]model.ActivityLog, 0, limit)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode activity logs: %w", err)
	}
	return out, nil
}
