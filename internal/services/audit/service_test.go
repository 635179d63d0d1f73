package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

type memRepo struct {
	entries   []model.ActivityLog
	err       error
	lastLimit int
}

func (m *memRepo) Insert(_ context.Context, entry model.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRepo) Latest(_ context.Context, limit int) ([]model.ActivityLog, error) {
	m.lastLimit = limit
	return m.entries, nil
}

func TestRecordWritesEntry(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Record(context.Background(), Actor{ID: "a1"}, enums.ActionRejectedProfile, enums.EntityMatrimonyProfile, "p1", map[string]interface{}{"reason": "blurry photo"})

	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	got := repo.entries[0]
	if got.AdminID != "a1" || got.AdminName != "a1" || got.EntityID != "p1" || !got.Timestamp.Equal(now) {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.ID == "" {
		t.Fatalf("entry id must be set")
	}
	if got.Changes["reason"] != "blurry photo" {
		t.Fatalf("unexpected changes: %v", got.Changes)
	}
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("mongo down")}, nil)
	svc.Record(context.Background(), Actor{ID: "a1"}, enums.ActionApprovedProfile, enums.EntityMatrimonyProfile, "p1", nil)

	var disabled *Service
	disabled.Record(context.Background(), Actor{ID: "a1"}, enums.ActionApprovedProfile, enums.EntityMatrimonyProfile, "p1", nil)
}

func TestLatestClampsLimit(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)

	for _, tc := range []struct{ in, want int }{{0, 50}, {10, 10}, {1000, 200}} {
		if _, err := svc.Latest(context.Background(), tc.in); err != nil {
			t.Fatalf("latest: %v", err)
		}
		if repo.lastLimit != tc.want {
			t.Fatalf("limit %d: got %d want %d", tc.in, repo.lastLimit, tc.want)
		}
	}
}
