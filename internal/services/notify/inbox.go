package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	mongorepo "github.com/Krunal123456/Bari/internal/repo/mongo"
)

var ErrNotFound = errors.New("notification not found")

type InboxStore interface {
	Insert(ctx context.Context, n model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// Inbox writes in-app notifications and mirrors them as a push to the same user.
type Inbox struct {
	store      InboxStore
	dispatcher *Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewInbox(store InboxStore, dispatcher *Dispatcher, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{store: store, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Notify is best-effort: failures are logged only.
func (i *Inbox) Notify(ctx context.Context, userID string, typ enums.NotificationType, title, body string, payload map[string]interface{}) {
	if i == nil || strings.TrimSpace(userID) == "" {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["title"] = title
	payload["body"] = body

	if i.store != nil {
		n := model.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      typ,
			Payload:   payload,
			CreatedAt: i.now().UTC(),
		}
		if err := i.store.Insert(ctx, n); err != nil {
			i.logger.Warn("inbox write failed", zap.String("user_id", userID), zap.String("type", string(typ)), zap.Error(err))
		}
	}
	i.dispatcher.PushToUsers(ctx, []string{userID}, title, body, map[string]string{"type": string(typ)})
}

func (i *Inbox) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if i.store == nil {
		return []model.Notification{}, nil
	}
	return i.store.ListByUser(ctx, userID, unreadOnly, limit)
}

func (i *Inbox) MarkRead(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrValidation
	}
	if i.store == nil {
		return ErrNotFound
	}
	if err := i.store.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, mongorepo.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
