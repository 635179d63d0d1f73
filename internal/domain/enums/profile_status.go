package enums

type ProfileStatus string

const (
	ProfileStatusDraft            ProfileStatus = "draft"
	ProfileStatusSubmitted        ProfileStatus = "submitted"
	ProfileStatusPending          ProfileStatus = "pending"
	ProfileStatusApproved         ProfileStatus = "approved"
	ProfileStatusRejected         ProfileStatus = "rejected"
	ProfileStatusChangesRequested ProfileStatus = "changes_requested"
	ProfileStatusDeleted          ProfileStatus = "deleted"
)

// ReviewableStatuses are the statuses an admin decision may be taken from.
// submitted is kept as a synonym of pending for records created by older clients.
func ReviewableStatuses() []ProfileStatus {
	return []ProfileStatus{ProfileStatusSubmitted, ProfileStatusPending}
}

// EditableStatuses are the statuses in which the owner may change the profile.
func EditableStatuses() []ProfileStatus {
	return []ProfileStatus{ProfileStatusDraft, ProfileStatusChangesRequested}
}

func (s ProfileStatus) Valid() bool {
	switch s {
	case ProfileStatusDraft, ProfileStatusSubmitted, ProfileStatusPending, ProfileStatusApproved,
		ProfileStatusRejected, ProfileStatusChangesRequested, ProfileStatusDeleted:
		return true
	default:
		return false
	}
}

func (s ProfileStatus) IsPending() bool {
	return s == ProfileStatusSubmitted || s == ProfileStatusPending
}

func StatusStrings(statuses []ProfileStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
