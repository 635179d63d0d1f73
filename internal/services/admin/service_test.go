package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

type fakeUsers struct {
	users map[string]model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetRole(_ context.Context, id string, role enums.Role, protected []enums.Role, _ time.Time) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	for _, p := range protected {
		if u.Role == p {
			return model.User{}, pgrepo.ErrUserNotFound
		}
	}
	u.Role = role
	f.users[id] = u
	return u, nil
}

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) RevokeUser(_ context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return f.err
}

type fakeAuditor struct {
	actions []enums.ActivityAction
}

func (f *fakeAuditor) Record(_ context.Context, _ audit.Actor, action enums.ActivityAction, _ enums.EntityType, _ string, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

type fakeProfiles struct {
	rows []model.Profile
	got  model.AdminProfileFilter
}

func (f *fakeProfiles) ListByStatus(_ context.Context, filter model.AdminProfileFilter) ([]model.Profile, error) {
	f.got = filter
	return f.rows, nil
}

type fakeDirectory struct {
	rows []model.DirectoryEntry
	got  model.DirectoryFilter
}

func (f *fakeDirectory) List(_ context.Context, filter model.DirectoryFilter) ([]model.DirectoryEntry, error) {
	f.got = filter
	return f.rows, nil
}

type fakeStats struct{}

func (fakeStats) Dashboard(context.Context) (model.DashboardStats, error) {
	return model.DashboardStats{TotalUsers: 10, ApprovedProfiles: 4, PendingProfiles: 2, PublishedPosts: 3, DirectoryEntries: 7}, nil
}

func newRoleEnv() (*Service, *fakeUsers, *fakeRevoker, *fakeAuditor) {
	users := &fakeUsers{users: map[string]model.User{
		"root":   {ID: "root", Role: enums.RoleSuperAdmin},
		"root2":  {ID: "root2", Role: enums.RoleSuperAdmin},
		"mod":    {ID: "mod", Role: enums.RoleAdmin},
		"member": {ID: "member", Role: enums.RoleMember},
	}}
	rev := &fakeRevoker{}
	aud := &fakeAuditor{}
	svc := NewService(Dependencies{Users: users, Sessions: rev, Auditor: aud, Stats: fakeStats{}}, nil)
	return svc, users, rev, aud
}

func TestPromoteAndDemote(t *testing.T) {
	svc, users, rev, aud := newRoleEnv()
	ctx := context.Background()
	root := audit.Actor{ID: "root"}

	promoted, err := svc.Promote(ctx, root, enums.RoleSuperAdmin, "member")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != enums.RoleAdmin {
		t.Fatalf("role: got %s want admin", promoted.Role)
	}

	demoted, err := svc.Demote(ctx, root, enums.RoleSuperAdmin, "mod")
	if err != nil {
		t.Fatalf("demote: %v", err)
	}
	if demoted.Role != enums.RoleMember || users.users["mod"].Role != enums.RoleMember {
		t.Fatalf("demote did not persist: %+v", demoted)
	}
	if len(rev.revoked) != 2 {
		t.Fatalf("expected sessions revoked for both changes, got %v", rev.revoked)
	}
	if len(aud.actions) != 2 || aud.actions[0] != enums.ActionPromotedAdmin || aud.actions[1] != enums.ActionDemotedAdmin {
		t.Fatalf("unexpected audit trail: %v", aud.actions)
	}
}

func TestRoleChangeGuards(t *testing.T) {
	svc, _, _, aud := newRoleEnv()
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"plain admin cannot promote", func() error {
			_, err := svc.Promote(ctx, audit.Actor{ID: "mod"}, enums.RoleAdmin, "member")
			return err
		}, ErrForbidden},
		{"cannot demote self", func() error {
			_, err := svc.Demote(ctx, audit.Actor{ID: "root"}, enums.RoleSuperAdmin, "root")
			return err
		}, ErrSelfDemotion},
		{"cannot demote another super admin", func() error {
			_, err := svc.Demote(ctx, audit.Actor{ID: "root"}, enums.RoleSuperAdmin, "root2")
			return err
		}, ErrProtectedTarget},
		{"unknown user", func() error {
			_, err := svc.Promote(ctx, audit.Actor{ID: "root"}, enums.RoleSuperAdmin, "ghost")
			return err
		}, ErrNotFound},
	}
	for _, tc := range cases {
		if err := tc.run(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
	if len(aud.actions) != 0 {
		t.Fatalf("rejected changes must not be audited: %v", aud.actions)
	}
}

func TestRevokeFailureDoesNotFailRoleChange(t *testing.T) {
	svc, _, rev, _ := newRoleEnv()
	rev.err = errors.New("redis down")

	if _, err := svc.Promote(context.Background(), audit.Actor{ID: "root"}, enums.RoleSuperAdmin, "member"); err != nil {
		t.Fatalf("promote should succeed despite revoke failure: %v", err)
	}
}

func TestStats(t *testing.T) {
	svc, _, _, _ := newRoleEnv()
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 10 || stats.DirectoryEntries != 7 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestExportProfilesCSV(t *testing.T) {
	submitted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	profiles := &fakeProfiles{rows: []model.Profile{{
		ID:          "p1",
		FullName:    "Priya Sharma, Jr.",
		Gender:      "Female",
		Age:         27,
		UserEmail:   "priya@example.com",
		Status:      enums.ProfileStatusApproved,
		SubmittedAt: &submitted,
		CreatedAt:   submitted,
	}}}
	svc := NewService(Dependencies{Profiles: profiles}, nil)

	var buf bytes.Buffer
	n, err := svc.ExportProfiles(context.Background(), &buf, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows: got %d want 1", n)
	}
	if profiles.got.Limit != ExportLimit {
		t.Fatalf("limit: got %d want %d", profiles.got.Limit, ExportLimit)
	}
	for _, st := range profiles.got.Statuses {
		if st == enums.ProfileStatusDeleted {
			t.Fatalf("default export must skip deleted profiles")
		}
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d want 2", len(records))
	}
	if records[1][1] != "Priya Sharma, Jr." || records[1][3] != "27" || records[1][12] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected row: %v", records[1])
	}

	if _, err := svc.ExportProfiles(context.Background(), &buf, []enums.ProfileStatus{"live"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status: got %v want %v", err, ErrValidation)
	}
}

func TestExportDirectoryIncludesPending(t *testing.T) {
	dir := &fakeDirectory{rows: []model.DirectoryEntry{{ID: "d1", Name: "Ramesh"}, {ID: "d2", Name: "Sunita", Approved: true}}}
	svc := NewService(Dependencies{Directory: dir}, nil)

	var buf bytes.Buffer
	n, err := svc.ExportDirectory(context.Background(), &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 || !dir.got.IncludePending {
		t.Fatalf("unexpected export: n=%d filter=%+v", n, dir.got)
	}
	if name := ExportFileName("Directory", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)); name != "directory-export-20260501.csv" {
		t.Fatalf("file name: got %s", name)
	}
}
