package enums

type ActivityAction string

const (
	ActionApprovedProfile        ActivityAction = "approved_matrimony_profile"
	ActionRejectedProfile        ActivityAction = "rejected_matrimony_profile"
	ActionRequestedChanges       ActivityAction = "requested_changes_matrimony"
	ActionDeletedProfile         ActivityAction = "deleted_matrimony_profile"
	ActionToggledSpotlight       ActivityAction = "toggled_spotlight_matrimony"
	ActionApprovedDirectoryEntry ActivityAction = "approved_directory_entry"
	ActionDeletedDirectoryEntry  ActivityAction = "deleted_directory_entry"
	ActionUpdatedCMSContent      ActivityAction = "updated_cms_content"
	ActionCreatedPost            ActivityAction = "created_post"
	ActionUpdatedPost            ActivityAction = "updated_post"
	ActionArchivedPost           ActivityAction = "archived_post"
	ActionPromotedAdmin          ActivityAction = "promoted_admin"
	ActionDemotedAdmin           ActivityAction = "demoted_admin"
	ActionDowngradedSubscription ActivityAction = "downgraded_subscription"
)

type EntityType string

const (
	EntityMatrimonyProfile EntityType = "matrimony_profile"
	EntityDirectoryEntry   EntityType = "directory_entry"
	EntityCMSContent       EntityType = "cms_content"
	EntityPost             EntityType = "post"
	EntityUser             EntityType = "user"
	EntitySubscription     EntityType = "subscription"
)
