package rules

import "time"

// FreeInterestsPerDay is the default daily interest allowance of a free member.
const FreeInterestsPerDay = 3

// QuotaDay is the calendar day interests are counted against.
type QuotaDay struct {
	Key     string
	Start   time.Time
	ResetAt time.Time
}

// QuotaDayOf returns the UTC day containing now.
func QuotaDayOf(now time.Time) QuotaDay {
	return QuotaDayIn(now, time.UTC)
}

// QuotaDayIn returns the day containing now in loc; Start and ResetAt are in UTC.
func QuotaDayIn(now time.Time, loc *time.Location) QuotaDay {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return QuotaDay{
		Key:     local.Format("2006-01-02"),
		Start:   start.UTC(),
		ResetAt: start.AddDate(0, 0, 1).UTC(),
	}
}

// InterestLimit is the daily cap for a member; 0 means uncapped. Paid members
// are only subject to the burst limiter.
func InterestLimit(paid bool, freePerDay int) int {
	if paid {
		return 0
	}
	if freePerDay <= 0 {
		return FreeInterestsPerDay
	}
	return freePerDay
}

// Remaining reports how many interests are left today, or -1 when uncapped.
func Remaining(limit, used int) int {
	if limit <= 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
