package enums

type PostType string

const (
	PostTypeAnnouncement PostType = "announcement"
	PostTypeEvent        PostType = "event"
	PostTypeMatrimony    PostType = "matrimony"
	PostTypeUpdate       PostType = "update"
	PostTypeGeneral      PostType = "general"
)

func (t PostType) Valid() bool {
	switch t {
	case PostTypeAnnouncement, PostTypeEvent, PostTypeMatrimony, PostTypeUpdate, PostTypeGeneral:
		return true
	default:
		return false
	}
}

type PostPriority string

const (
	PostPriorityNormal    PostPriority = "normal"
	PostPriorityHigh      PostPriority = "high"
	PostPriorityEmergency PostPriority = "emergency"
)

// Rank orders priorities; unknown values rank with normal.
func (p PostPriority) Rank() int {
	switch p {
	case PostPriorityEmergency:
		return 2
	case PostPriorityHigh:
		return 1
	default:
		return 0
	}
}

func (p PostPriority) Valid() bool {
	return p == PostPriorityNormal || p == PostPriorityHigh || p == PostPriorityEmergency
}

type PostVisibility string

const (
	PostVisibilityPublic  PostVisibility = "public"
	PostVisibilityPrivate PostVisibility = "private"
	PostVisibilityAdmin   PostVisibility = "admin"
)

func (v PostVisibility) Valid() bool {
	return v == PostVisibilityPublic || v == PostVisibilityPrivate || v == PostVisibilityAdmin
}

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished || s == PostStatusArchived
}
