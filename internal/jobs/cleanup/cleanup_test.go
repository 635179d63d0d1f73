package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

type fakeProfiles struct {
	profiles []model.Profile
	cleared  []string
}

func (f *fakeProfiles) ListDeletedWithPhotos(_ context.Context, cutoff time.Time, limit int) ([]model.Profile, error) {
	var out []model.Profile
	for _, p := range f.profiles {
		if p.Status != enums.ProfileStatusDeleted || p.DeletedAt == nil || !p.DeletedAt.Before(cutoff) || len(p.Photos) == 0 {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProfiles) ClearPhotos(_ context.Context, id string, _ time.Time) error {
	f.cleared = append(f.cleared, id)
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			f.profiles[i].Photos = nil
		}
	}
	return nil
}

type fakeStorage struct {
	deleted []string
	failFor map[string]bool
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	if f.failFor[key] {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func TestRunRemovesPhotosPastRetention(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-24 * time.Hour)

	profiles := &fakeProfiles{profiles: []model.Profile{
		{ID: "old", Status: enums.ProfileStatusDeleted, DeletedAt: &old, Photos: []model.ProfilePhoto{{ObjectKey: "matrimony/u1/old/1_a.jpg"}, {ObjectKey: "matrimony/u1/old/2_b.jpg"}}},
		{ID: "recent", Status: enums.ProfileStatusDeleted, DeletedAt: &recent, Photos: []model.ProfilePhoto{{ObjectKey: "matrimony/u2/recent/1_a.jpg"}}},
		{ID: "live", Status: enums.ProfileStatusApproved, Photos: []model.ProfilePhoto{{ObjectKey: "matrimony/u3/live/1_a.jpg"}}},
	}}
	storage := &fakeStorage{}

	job := NewMediaCleanupJob(profiles, storage, 30*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}
	if res.Profiles != 1 || res.Objects != 2 || res.Failed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(profiles.cleared) != 1 || profiles.cleared[0] != "old" {
		t.Fatalf("unexpected cleared profiles: %v", profiles.cleared)
	}
	if len(storage.deleted) != 2 {
		t.Fatalf("expected two objects deleted, got %v", storage.deleted)
	}
}

func TestRunKeepsReferencesWhenDeleteFails(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-60 * 24 * time.Hour)

	profiles := &fakeProfiles{profiles: []model.Profile{
		{ID: "old", Status: enums.ProfileStatusDeleted, DeletedAt: &old, Photos: []model.ProfilePhoto{{ObjectKey: "k1"}, {ObjectKey: "k2"}}},
	}}
	storage := &fakeStorage{failFor: map[string]bool{"k2": true}}

	job := NewMediaCleanupJob(profiles, storage, 0, nil)
	job.now = func() time.Time { return now }

	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}
	if res.Failed != 1 || res.Profiles != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(profiles.cleared) != 0 {
		t.Fatalf("references must stay until every object is gone")
	}
}

func TestRunWithoutDependenciesIsNoop(t *testing.T) {
	res, err := NewMediaCleanupJob(nil, nil, time.Hour, nil).Run(context.Background())
	if err != nil || res != (Result{}) {
		t.Fatalf("expected no-op, got %+v %v", res, err)
	}
}
