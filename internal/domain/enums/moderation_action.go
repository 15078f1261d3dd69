package enums

type ModerationAction string

const (
	ModerationActionAssigned   ModerationAction = "assigned"
	ModerationActionUnassigned ModerationAction = "unassigned"
	ModerationActionApproved   ModerationAction = "approved"
	ModerationActionRejected   ModerationAction = "rejected"
	ModerationActionReported   ModerationAction = "reported"
	ModerationActionRequeued   ModerationAction = "requeued"
)

// ActionForStatus maps a terminal decision to its audit action.
func ActionForStatus(status ModerationStatus) (ModerationAction, bool) {
	switch status {
	case ModerationStatusApproved:
		return ModerationActionApproved, true
	case ModerationStatusRejected:
		return ModerationActionRejected, true
	default:
		return "", false
	}
}
