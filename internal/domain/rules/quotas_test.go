package rules

import (
	"testing"
	"time"
)

func TestQuotaDayOfIsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 01:00 IST on Feb 9 is still Feb 8 in UTC.
	now := time.Date(2026, 2, 9, 1, 0, 0, 0, ist)

	day := QuotaDayOf(now)
	if day.Key != "2026-02-08" {
		t.Fatalf("unexpected key: got %s want 2026-02-08", day.Key)
	}
	if want := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC); !day.Start.Equal(want) {
		t.Fatalf("unexpected start: got %s want %s", day.Start, want)
	}
	if want := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC); !day.ResetAt.Equal(want) {
		t.Fatalf("unexpected reset: got %s want %s", day.ResetAt, want)
	}
}

func TestQuotaDayInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	day := QuotaDayIn(time.Date(2026, 2, 8, 19, 30, 0, 0, time.UTC), loc)
	if day.Key != "2026-02-09" {
		t.Fatalf("unexpected key: got %s want 2026-02-09", day.Key)
	}
	if want := time.Date(2026, 2, 8, 18, 30, 0, 0, time.UTC); !day.Start.Equal(want) {
		t.Fatalf("unexpected start: got %s want %s", day.Start, want)
	}
}

func TestInterestLimitAndRemaining(t *testing.T) {
	tests := []struct {
		paid       bool
		freePerDay int
		used       int
		wantLimit  int
		wantLeft   int
	}{
		{paid: false, freePerDay: 3, used: 0, wantLimit: 3, wantLeft: 3},
		{paid: false, freePerDay: 3, used: 3, wantLimit: 3, wantLeft: 0},
		{paid: false, freePerDay: 3, used: 5, wantLimit: 3, wantLeft: 0},
		{paid: false, freePerDay: 0, used: 1, wantLimit: FreeInterestsPerDay, wantLeft: 2},
		{paid: true, freePerDay: 3, used: 40, wantLimit: 0, wantLeft: -1},
	}
	for _, tt := range tests {
		limit := InterestLimit(tt.paid, tt.freePerDay)
		if limit != tt.wantLimit {
			t.Fatalf("InterestLimit(%v, %d): got %d want %d", tt.paid, tt.freePerDay, limit, tt.wantLimit)
		}
		if left := Remaining(limit, tt.used); left != tt.wantLeft {
			t.Fatalf("Remaining(%d, %d): got %d want %d", limit, tt.used, left, tt.wantLeft)
		}
	}
}
