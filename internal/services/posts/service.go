package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
	"github.com/Krunal123456/Bari/internal/services/media"
)

const (
	DefaultPageSize = 20
	maxTitleRunes   = 200
	maxContentRunes = 20000
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("post not found")
	ErrMediaUnavailable  = errors.New("media storage is not configured")
	ErrArchivedImmutable = errors.New("archived posts cannot be edited")
)

type Store interface {
	Create(ctx context.Context, p model.Post) (model.Post, error)
	Update(ctx context.Context, p model.Post) (model.Post, error)
	Archive(ctx context.Context, id string, now time.Time) (model.Post, error)
	GetByID(ctx context.Context, id string) (model.Post, error)
	List(ctx context.Context, f model.PostFilter) ([]model.Post, error)
	ListPublished(ctx context.Context, now time.Time) ([]model.Post, error)
	SetRead(ctx context.Context, userID, postID string, read bool, now time.Time) error
	ReadStatus(ctx context.Context, userID string) (map[string]bool, error)
}

type MediaStorage interface {
	PostMediaKey(fileName string) string
	Put(ctx context.Context, key string, up media.Upload) (media.Object, error)
}

type Broadcaster interface {
	PushToAll(ctx context.Context, title, body string, data map[string]string)
}

type LiveFeed interface {
	Publish(ev Event)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type Input struct {
	Title       string
	Content     string
	Type        enums.PostType
	Priority    enums.PostPriority
	Visibility  enums.PostVisibility
	Status      enums.PostStatus
	IsPinned    bool
	Images      []string
	Attachments []string
	VideoURL    string
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
}

type Service struct {
	store       Store
	media       MediaStorage
	broadcaster Broadcaster
	feed        LiveFeed
	auditor     Auditor
	now         func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) AttachMedia(storage MediaStorage) {
	s.media = storage
}

func (s *Service) AttachBroadcast(broadcaster Broadcaster, feed LiveFeed) {
	s.broadcaster = broadcaster
	s.feed = feed
}

func (s *Service) AttachAuditor(auditor Auditor) {
	s.auditor = auditor
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in Input) (model.Post, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return model.Post{}, fmt.Errorf("author is required: %w", ErrValidation)
	}
	if err := normalizeInput(&in); err != nil {
		return model.Post{}, err
	}

	now := s.now().UTC()
	created, err := s.store.Create(ctx, model.Post{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Content:     in.Content,
		Type:        in.Type,
		Priority:    in.Priority,
		Visibility:  in.Visibility,
		Status:      in.Status,
		IsPinned:    in.IsPinned,
		Images:      in.Images,
		Attachments: in.Attachments,
		VideoURL:    in.VideoURL,
		ScheduledAt: in.ScheduledAt,
		ExpiresAt:   in.ExpiresAt,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	s.record(ctx, actor, enums.ActionCreatedPost, created.ID, map[string]interface{}{"title": created.Title, "status": string(created.Status)})
	s.announce(ctx, model.Post{}, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id string, in Input) (model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Post{}, ErrValidation
	}
	if err := normalizeInput(&in); err != nil {
		return model.Post{}, err
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Post{}, mapStoreError(err)
	}
	if current.Status == enums.PostStatusArchived {
		return model.Post{}, ErrArchivedImmutable
	}

	next := current
	next.Title = in.Title
	next.Content = in.Content
	next.Type = in.Type
	next.Priority = in.Priority
	next.Visibility = in.Visibility
	next.Status = in.Status
	next.IsPinned = in.IsPinned
	next.Images = in.Images
	next.Attachments = in.Attachments
	next.VideoURL = in.VideoURL
	next.ScheduledAt = in.ScheduledAt
	next.ExpiresAt = in.ExpiresAt
	next.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return model.Post{}, mapStoreError(err)
	}

	s.record(ctx, actor, enums.ActionUpdatedPost, updated.ID, map[string]interface{}{"status": string(updated.Status)})
	s.announce(ctx, current, updated)
	return updated, nil
}

// Archive is the delete operation for posts.
func (s *Service) Archive(ctx context.Context, actor audit.Actor, id string) (model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Post{}, ErrValidation
	}
	archived, err := s.store.Archive(ctx, id, s.now().UTC())
	if err != nil {
		return model.Post{}, mapStoreError(err)
	}
	s.record(ctx, actor, enums.ActionArchivedPost, archived.ID, nil)
	if s.feed != nil {
		s.feed.Publish(Event{Type: EventPostArchived, PostID: archived.ID})
	}
	return archived, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Post, error) {
	p, err := s.store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.Post{}, mapStoreError(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f model.PostFilter) ([]model.Post, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("unknown post type: %w", ErrValidation)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("unknown post status: %w", ErrValidation)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, fmt.Errorf("unknown post priority: %w", ErrValidation)
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	return s.store.List(ctx, f)
}

// ListActive returns the posts visible to viewer right now in rendering order.
func (s *Service) ListActive(ctx context.Context, viewer rules.Viewer) ([]model.Post, error) {
	now := s.now().UTC()
	published, err := s.store.ListPublished(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active posts: %w", err)
	}
	active := rules.FilterActivePosts(published, viewer, now)
	rules.SortPosts(active)
	return active, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, postID string, read bool) error {
	userID, postID = strings.TrimSpace(userID), strings.TrimSpace(postID)
	if userID == "" || postID == "" {
		return ErrValidation
	}
	if err := s.store.SetRead(ctx, userID, postID, read, s.now().UTC()); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *Service) ReadStatus(ctx context.Context, userID string) (map[string]bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	return s.store.ReadStatus(ctx, userID)
}

func (s *Service) UploadMedia(ctx context.Context, up media.Upload) (media.Object, error) {
	if s.media == nil {
		return media.Object{}, ErrMediaUnavailable
	}
	obj, err := s.media.Put(ctx, s.media.PostMediaKey(up.FileName), up)
	if err != nil {
		return media.Object{}, err
	}
	return obj, nil
}

// announce fans out a post that just became broadcast-worthy. Editing an
// already broadcast post does not push again. Posts outside their schedule
// window only reach the live feed as a bare id.
func (s *Service) announce(ctx context.Context, before, after model.Post) {
	now := s.now().UTC()
	if s.feed != nil && after.Status == enums.PostStatusPublished {
		ev := Event{Type: EventPostUpserted, PostID: after.ID}
		if rules.IsPostActive(after, rules.Viewer{}, now) {
			ev.Post = &after
		}
		s.feed.Publish(ev)
	}
	if s.broadcaster == nil || !rules.ShouldBroadcastPost(after) || !rules.IsPostLive(after, now) {
		return
	}
	if before.ID != "" && wasBroadcast(before) {
		return
	}
	s.broadcaster.PushToAll(ctx, after.Title, previewText(after.Content), map[string]string{
		"type":    string(enums.NotificationPostPublished),
		"post_id": after.ID,
		"url":     "/posts/" + after.ID,
	})
}

// wasBroadcast reports whether p was pushed when it was last saved.
func wasBroadcast(p model.Post) bool {
	saved := p.UpdatedAt
	if saved.IsZero() {
		saved = p.CreatedAt
	}
	return rules.ShouldBroadcastPost(p) && rules.IsPostLive(p, saved)
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, postID string, changes map[string]interface{}) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, actor, action, enums.EntityPost, postID, changes)
}

func normalizeInput(in *Input) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	if in.Title == "" || utf8.RuneCountInString(in.Title) > maxTitleRunes {
		return fmt.Errorf("title must be 1-%d characters: %w", maxTitleRunes, ErrValidation)
	}
	if utf8.RuneCountInString(in.Content) > maxContentRunes {
		return fmt.Errorf("content is too long: %w", ErrValidation)
	}
	if in.Type == "" {
		in.Type = enums.PostTypeGeneral
	}
	if in.Priority == "" {
		in.Priority = enums.PostPriorityNormal
	}
	if in.Visibility == "" {
		in.Visibility = enums.PostVisibilityPublic
	}
	if in.Status == "" {
		in.Status = enums.PostStatusDraft
	}
	if !in.Type.Valid() || !in.Priority.Valid() || !in.Visibility.Valid() || !in.Status.Valid() {
		return fmt.Errorf("unknown post attribute: %w", ErrValidation)
	}
	if in.ScheduledAt != nil && in.ExpiresAt != nil && !in.ExpiresAt.After(*in.ScheduledAt) {
		return fmt.Errorf("expiry must be after schedule: %w", ErrValidation)
	}
	in.Images = compact(in.Images)
	in.Attachments = compact(in.Attachments)
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func previewText(content string) string {
	const limit = 140
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	r := []rune(content)
	return string(r[:limit-1]) + "…"
}

func mapStoreError(err error) error {
	if errors.Is(err, pgrepo.ErrPostNotFound) {
		return ErrNotFound
	}
	return err
}
