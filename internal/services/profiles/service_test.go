package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/media"
)

type memStore struct {
	byID map[string]model.Profile
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]model.Profile{}}
}

func (m *memStore) Create(_ context.Context, p model.Profile) (model.Profile, error) {
	for _, existing := range m.byID {
		if existing.UserID == p.UserID && existing.Status != enums.ProfileStatusDeleted {
			return model.Profile{}, pgrepo.ErrProfileExists
		}
	}
	m.byID[p.ID] = p
	return p, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (model.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (m *memStore) GetByOwner(_ context.Context, userID string) (model.Profile, error) {
	for _, p := range m.byID {
		if p.UserID == userID && p.Status != enums.ProfileStatusDeleted {
			return p, nil
		}
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (m *memStore) UpdateFields(_ context.Context, id, ownerID string, f model.ProfileFields, allowed []enums.ProfileStatus, now time.Time) (model.Profile, error) {
	p, ok := m.byID[id]
	if !ok || p.UserID != ownerID {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	if !in(p.Status, allowed) {
		return model.Profile{}, pgrepo.ErrProfileStatusConflict
	}
	applyFields(&p, f)
	p.UpdatedAt = now
	m.byID[id] = p
	return p, nil
}

func (m *memStore) Transition(_ context.Context, t pgrepo.ProfileTransition) (model.Profile, error) {
	p, ok := m.byID[t.ID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	if !in(p.Status, t.From) {
		return model.Profile{}, pgrepo.ErrProfileStatusConflict
	}
	p.Status = t.To
	if t.SubmittedAt != nil {
		p.SubmittedAt = t.SubmittedAt
	}
	if t.ClearReviewNotes {
		p.RejectionReason, p.ChangeRequests = "", ""
	}
	m.byID[t.ID] = p
	return p, nil
}

func (m *memStore) AppendPhoto(_ context.Context, id, ownerID string, photo model.ProfilePhoto, allowed []enums.ProfileStatus, maxPhotos int, _ time.Time) (model.Profile, error) {
	p, ok := m.byID[id]
	if !ok || p.UserID != ownerID {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	if len(p.Photos) >= maxPhotos {
		return model.Profile{}, pgrepo.ErrPhotoLimitReached
	}
	if !in(p.Status, allowed) {
		return model.Profile{}, pgrepo.ErrProfileStatusConflict
	}
	p.Photos = append(p.Photos, photo)
	m.byID[id] = p
	return p, nil
}

func (m *memStore) RemovePhoto(_ context.Context, id, ownerID, objectKey string, _ time.Time) (model.Profile, error) {
	p, ok := m.byID[id]
	if !ok || p.UserID != ownerID {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	kept := []model.ProfilePhoto{}
	for _, ph := range p.Photos {
		if ph.ObjectKey != objectKey {
			kept = append(kept, ph)
		}
	}
	p.Photos = kept
	m.byID[id] = p
	return p, nil
}

// Search deliberately ignores status so the service filter is exercised.
func (m *memStore) Search(_ context.Context, f model.ProfileSearchFilter, _ time.Time) ([]model.Profile, error) {
	out := []model.Profile{}
	for _, p := range m.byID {
		if f.Gender != "" && !strings.EqualFold(p.Gender, f.Gender) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func in(s enums.ProfileStatus, set []enums.ProfileStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

type fakeAlerts struct {
	texts []string
	links []string
}

func (f *fakeAlerts) AlertAdmins(_ context.Context, text, link string) {
	f.texts = append(f.texts, text)
	f.links = append(f.links, link)
}

type fakePhotos struct {
	stored  map[string]bool
	deleted []string
	seq     int
}

func (f *fakePhotos) ProfilePhotoKey(userID, profileID, fileName string) string {
	f.seq++
	return fmt.Sprintf("matrimony/%s/%s/%d_%s", userID, profileID, f.seq, fileName)
}

func (f *fakePhotos) Put(_ context.Context, key string, up media.Upload) (media.Object, error) {
	_, _ = io.ReadAll(up.Body)
	f.stored[key] = true
	return media.Object{Key: key, URL: "https://cdn.local/" + key}, nil
}

func (f *fakePhotos) Delete(_ context.Context, key string) error {
	delete(f.stored, key)
	f.deleted = append(f.deleted, key)
	return nil
}

var fixedNow = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memStore, *fakeAlerts) {
	store := newMemStore()
	alerts := &fakeAlerts{}
	svc := NewService(store)
	svc.AttachAlerts(alerts, "https://barisamaj.org/")
	svc.now = func() time.Time { return fixedNow }
	return svc, store, alerts
}

func completeInput() Input {
	dob := time.Date(1998, 6, 1, 0, 0, 0, 0, time.UTC)
	return Input{
		FullName:    "Priya Sharma",
		Gender:      "female",
		DateOfBirth: &dob,
		Location:    "Jaipur",
		Education:   "MBA",
		Phone:       "+91 98765 43210",
	}
}

func TestCreateDraftAndSubmitIsIdempotent(t *testing.T) {
	svc, _, alerts := newTestService()
	ctx := context.Background()

	p, err := svc.CreateDraft(ctx, Owner{ID: "u1", Email: "priya@example.com"}, completeInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if p.Status != enums.ProfileStatusDraft || p.Gender != "Female" || p.Age != 27 {
		t.Fatalf("unexpected draft: status=%s gender=%s age=%d", p.Status, p.Gender, p.Age)
	}

	submitted, err := svc.Submit(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != enums.ProfileStatusPending || submitted.SubmittedAt == nil || !submitted.SubmittedAt.Equal(fixedNow) {
		t.Fatalf("unexpected submitted profile: %+v", submitted)
	}

	again, err := svc.Submit(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if again.Status != enums.ProfileStatusPending {
		t.Fatalf("resubmit must keep pending, got %s", again.Status)
	}
	if len(alerts.texts) != 1 {
		t.Fatalf("alert must be sent once, got %d", len(alerts.texts))
	}
	if alerts.links[0] != "https://barisamaj.org/admin/matrimony/"+p.ID {
		t.Fatalf("unexpected review link: %s", alerts.links[0])
	}
}

func TestOneProfilePerOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput()); !errors.Is(err, ErrProfileExists) {
		t.Fatalf("got %v want %v", err, ErrProfileExists)
	}
}

func TestUpdateOnlyInEditableStatuses(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	p, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := completeInput()
	in.Location = "Udaipur"
	updated, err := svc.Update(ctx, "u1", p.ID, in)
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Location != "Udaipur" {
		t.Fatalf("location not updated: %s", updated.Location)
	}

	for _, status := range []enums.ProfileStatus{enums.ProfileStatusPending, enums.ProfileStatusApproved, enums.ProfileStatusRejected} {
		stored := store.byID[p.ID]
		stored.Status = status
		store.byID[p.ID] = stored
		if _, err := svc.Update(ctx, "u1", p.ID, in); !errors.Is(err, ErrStatusConflict) {
			t.Fatalf("status %s: got %v want %v", status, err, ErrStatusConflict)
		}
	}

	stored := store.byID[p.ID]
	stored.Status = enums.ProfileStatusChangesRequested
	store.byID[p.ID] = stored
	if _, err := svc.Update(ctx, "u1", p.ID, in); err != nil {
		t.Fatalf("update with changes requested: %v", err)
	}
	if _, err := svc.Update(ctx, "u2", p.ID, in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other owner: got %v want %v", err, ErrNotFound)
	}
}

func TestSubmitRejectsTerminalAndIncomplete(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, Input{FullName: "Draft Only"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", p.ID); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("got %v want %v", err, ErrIncomplete)
	}

	if _, err := svc.Update(ctx, "u1", p.ID, completeInput()); err != nil {
		t.Fatalf("complete profile: %v", err)
	}
	stored := store.byID[p.ID]
	stored.Status = enums.ProfileStatusRejected
	store.byID[p.ID] = stored
	if _, err := svc.Submit(ctx, "u1", p.ID); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("got %v want %v", err, ErrStatusConflict)
	}
}

func TestResubmitClearsChangeRequests(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := store.byID[p.ID]
	stored.Status = enums.ProfileStatusChangesRequested
	stored.ChangeRequests = "Add your education"
	store.byID[p.ID] = stored

	submitted, err := svc.Submit(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != enums.ProfileStatusPending || submitted.ChangeRequests != "" {
		t.Fatalf("unexpected resubmission: status %s notes %q", submitted.Status, submitted.ChangeRequests)
	}
}

func TestInputValidation(t *testing.T) {
	svc, _, _ := newTestService()
	young := fixedNow.AddDate(-17, 0, 0)

	cases := map[string]Input{
		"missing name": {Gender: "female"},
		"bad gender":   {FullName: "A", Gender: "robot"},
		"bad phone":    {FullName: "A", Phone: "call me"},
		"under 18":     {FullName: "A", DateOfBirth: &young},
		"long about":   {FullName: "A", About: strings.Repeat("x", maxTextRunes+1)},
	}
	for name, in := range cases {
		if _, err := svc.CreateDraft(context.Background(), Owner{ID: "u-" + name}, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: got %v want %v", name, err, ErrValidation)
		}
	}
}

func TestSearchNeverReturnsUnapproved(t *testing.T) {
	svc, store, _ := newTestService()
	statuses := []enums.ProfileStatus{
		enums.ProfileStatusDraft, enums.ProfileStatusPending, enums.ProfileStatusSubmitted,
		enums.ProfileStatusApproved, enums.ProfileStatusRejected, enums.ProfileStatusChangesRequested,
		enums.ProfileStatusDeleted,
	}
	for i, st := range statuses {
		id := string(rune('a' + i))
		store.byID[id] = model.Profile{ID: id, UserID: "owner-" + id, Gender: "Female", Status: st}
	}

	got, err := svc.Search(context.Background(), model.ProfileSearchFilter{Gender: "female"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Status != enums.ProfileStatusApproved {
		t.Fatalf("search must only return approved profiles, got %+v", got)
	}

	if _, err := svc.Search(context.Background(), model.ProfileSearchFilter{AgeMin: 40, AgeMax: 30}); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want %v", err, ErrValidation)
	}
}

func TestPhotoUploadAndDelete(t *testing.T) {
	svc, _, _ := newTestService()
	photos := &fakePhotos{stored: map[string]bool{}}
	svc.AttachPhotos(photos)
	ctx := context.Background()

	p, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < MaxPhotos; i++ {
		p, err = svc.UploadPhoto(ctx, "u1", p.ID, media.Upload{FileName: "a.jpg", Size: 3, Body: strings.NewReader("jpg")})
		if err != nil {
			t.Fatalf("upload #%d: %v", i+1, err)
		}
	}
	if _, err := svc.UploadPhoto(ctx, "u1", p.ID, media.Upload{FileName: "b.jpg", Size: 3, Body: strings.NewReader("jpg")}); !errors.Is(err, ErrPhotoLimit) {
		t.Fatalf("got %v want %v", err, ErrPhotoLimit)
	}

	key := p.Photos[0].ObjectKey
	updated, err := svc.DeletePhoto(ctx, "u1", p.ID, key)
	if err != nil {
		t.Fatalf("delete photo: %v", err)
	}
	if len(updated.Photos) != MaxPhotos-1 || hasPhoto(updated, key) {
		t.Fatalf("photo reference not removed: %+v", updated.Photos)
	}
	if len(photos.deleted) != 1 || photos.deleted[0] != key {
		t.Fatalf("photo object not deleted: %v", photos.deleted)
	}
	if _, err := svc.DeletePhoto(ctx, "u1", p.ID, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want %v", err, ErrNotFound)
	}
}

func TestPhotoOnApprovedProfileReopensReview(t *testing.T) {
	svc, store, alerts := newTestService()
	svc.AttachPhotos(&fakePhotos{stored: map[string]bool{}})
	ctx := context.Background()

	p, err := svc.CreateDraft(ctx, Owner{ID: "u1"}, completeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := store.byID[p.ID]
	stored.Status = enums.ProfileStatusApproved
	store.byID[p.ID] = stored

	updated, err := svc.UploadPhoto(ctx, "u1", p.ID, media.Upload{FileName: "new.jpg", Size: 3, Body: strings.NewReader("jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if updated.Status != enums.ProfileStatusPending || len(updated.Photos) != 1 {
		t.Fatalf("photo change must go back to review: status %s photos %d", updated.Status, len(updated.Photos))
	}
	if updated.SubmittedAt == nil || !updated.SubmittedAt.Equal(fixedNow) {
		t.Fatalf("submitted at: got %v want %v", updated.SubmittedAt, fixedNow)
	}
	if len(alerts.texts) != 1 || !strings.Contains(alerts.texts[0], "review again") {
		t.Fatalf("admins not alerted: %v", alerts.texts)
	}

	found, err := svc.Search(ctx, model.ProfileSearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("profile under review must leave search: %+v", found)
	}
}
