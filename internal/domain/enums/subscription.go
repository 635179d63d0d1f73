package enums

type SubscriptionPlan string

const (
	SubscriptionPlanFree SubscriptionPlan = "free"
	SubscriptionPlanPaid SubscriptionPlan = "paid"
)

func (p SubscriptionPlan) Valid() bool {
	return p == SubscriptionPlanFree || p == SubscriptionPlanPaid
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type AccessMode string

const (
	AccessModeFull   AccessMode = "full"
	AccessModeMasked AccessMode = "masked"
)
