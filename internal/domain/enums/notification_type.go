package enums

type NotificationType string

const (
	NotificationInterestReceived NotificationType = "interest_received"
	NotificationProfileApproved  NotificationType = "profile_approved"
	NotificationProfileRejected  NotificationType = "profile_rejected"
	NotificationProfileChanges   NotificationType = "profile_changes_requested"
	NotificationPostPublished    NotificationType = "post_published"
)
