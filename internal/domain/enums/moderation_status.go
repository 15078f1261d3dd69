package enums

import "strings"

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationStatusPending, ModerationStatusApproved, ModerationStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s ModerationStatus) Terminal() bool {
	return s == ModerationStatusApproved || s == ModerationStatusRejected
}

func ParseModerationStatus(raw string) (ModerationStatus, bool) {
	status := ModerationStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}
