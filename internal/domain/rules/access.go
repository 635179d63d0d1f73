package rules

import (
	"strings"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

const visiblePhoneDigits = 4

// MaskPhone replaces every character except the last four with '*'.
func MaskPhone(phone string) string {
	runes := []rune(strings.TrimSpace(phone))
	if len(runes) <= visiblePhoneDigits {
		return string(runes)
	}
	masked := len(runes) - visiblePhoneDigits
	return strings.Repeat("*", masked) + string(runes[masked:])
}

// IsPaidActive reports whether sub grants full contact access at now.
func IsPaidActive(sub *model.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.Plan != enums.SubscriptionPlanPaid || sub.Status != enums.SubscriptionStatusActive {
		return false
	}
	if sub.ExpiryDate != nil && !sub.ExpiryDate.After(now) {
		return false
	}
	return true
}

func ResolveAccess(sub *model.Subscription, now time.Time) enums.AccessMode {
	if IsPaidActive(sub, now) {
		return enums.AccessModeFull
	}
	return enums.AccessModeMasked
}

// EntitlementAccess is ResolveAccess for an already resolved entitlement. A
// cached entitlement may have expired since it was resolved.
func EntitlementAccess(ent model.Entitlement, now time.Time) enums.AccessMode {
	if !ent.Paid || (ent.ExpiresAt != nil && !ent.ExpiresAt.After(now)) {
		return enums.AccessModeMasked
	}
	return enums.AccessModeFull
}

func AgeYears(birth, now time.Time) int {
	if birth.IsZero() {
		return 0
	}
	b := birth.UTC()
	n := now.UTC()
	age := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
