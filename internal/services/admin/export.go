package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

const ExportLimit = 1000

var profileHeader = []string{
	"id", "full_name", "gender", "age", "location", "education", "occupation",
	"marital_status", "phone", "email", "status", "spotlight", "submitted_at", "approval_date", "created_at",
}

var directoryHeader = []string{
	"id", "name", "family", "profession", "location", "phone", "email", "approved", "created_at",
}

// ExportProfiles writes up to ExportLimit profiles as CSV. An empty status list
// exports every non-deleted status.
func (s *Service) ExportProfiles(ctx context.Context, w io.Writer, statuses []enums.ProfileStatus) (int, error) {
	if s.profiles == nil {
		return 0, fmt.Errorf("profile lister is nil")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return 0, fmt.Errorf("unknown status %q: %w", st, ErrValidation)
		}
	}
	if len(statuses) == 0 {
		statuses = []enums.ProfileStatus{
			enums.ProfileStatusDraft,
			enums.ProfileStatusSubmitted,
			enums.ProfileStatusPending,
			enums.ProfileStatusApproved,
			enums.ProfileStatusRejected,
			enums.ProfileStatusChangesRequested,
		}
	}

	rows, err := s.profiles.ListByStatus(ctx, model.AdminProfileFilter{Statuses: statuses, Limit: ExportLimit})
	if err != nil {
		return 0, fmt.Errorf("list profiles for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return 0, err
	}
	for _, p := range rows {
		if err := cw.Write([]string{
			p.ID, p.FullName, p.Gender, strconv.Itoa(p.Age), p.Location, p.Education, p.Occupation,
			p.MaritalStatus, p.Phone, p.UserEmail, string(p.Status), strconv.FormatBool(p.Spotlight),
			formatTime(p.SubmittedAt), formatTime(p.ApprovalDate), p.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

func (s *Service) ExportDirectory(ctx context.Context, w io.Writer) (int, error) {
	if s.directory == nil {
		return 0, fmt.Errorf("directory lister is nil")
	}
	rows, err := s.directory.List(ctx, model.DirectoryFilter{IncludePending: true, Limit: ExportLimit})
	if err != nil {
		return 0, fmt.Errorf("list directory for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(directoryHeader); err != nil {
		return 0, err
	}
	for _, e := range rows {
		if err := cw.Write([]string{
			e.ID, e.Name, e.Family, e.Profession, e.Location, e.Phone, e.Email,
			strconv.FormatBool(e.Approved), e.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

// ExportFileName is the attachment name for an export of kind taken at now.
func ExportFileName(kind string, now time.Time) string {
	return fmt.Sprintf("%s-export-%s.csv", strings.ToLower(kind), now.UTC().Format("20060102"))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
