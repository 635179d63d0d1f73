package rules

import (
	"sort"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

// Viewer describes who is reading the feed. Anonymous viewers only see public posts.
type Viewer struct {
	Authenticated bool
	Admin         bool
}

// IsPostLive reports whether p is published and inside its schedule window at now.
func IsPostLive(p model.Post, now time.Time) bool {
	if p.Status != enums.PostStatusPublished {
		return false
	}
	if p.ScheduledAt != nil && p.ScheduledAt.After(now) {
		return false
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		return false
	}
	return true
}

// IsPostActive reports whether p is visible to viewer at now.
func IsPostActive(p model.Post, viewer Viewer, now time.Time) bool {
	if !IsPostLive(p, now) {
		return false
	}
	switch p.Visibility {
	case enums.PostVisibilityAdmin:
		return viewer.Admin
	case enums.PostVisibilityPrivate:
		return viewer.Authenticated || viewer.Admin
	default:
		return true
	}
}

func FilterActivePosts(posts []model.Post, viewer Viewer, now time.Time) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if IsPostActive(p, viewer, now) {
			out = append(out, p)
		}
	}
	return out
}

// SortPosts orders pinned first, then by priority, then newest first. Ties fall
// back to id so the order is total.
func SortPosts(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// ShouldBroadcastPost reports whether publishing p warrants a push fan-out.
func ShouldBroadcastPost(p model.Post) bool {
	if p.Status != enums.PostStatusPublished || p.Visibility == enums.PostVisibilityAdmin {
		return false
	}
	return p.Priority == enums.PostPriorityHigh || p.Priority == enums.PostPriorityEmergency
}
