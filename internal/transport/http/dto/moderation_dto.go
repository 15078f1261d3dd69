package dto

import (
	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type AssignRequest struct {
	// AssigneeID null clears the assignment.
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

type ApproveRequest struct {
	Notes string `json:"notes"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type ReportRequest struct {
	ItemType string    `json:"item_type"`
	ItemID   uuid.UUID `json:"item_id"`
	Reason   string    `json:"reason"`
}

type QueueResponse struct {
	Items []model.ModerationQueueEntry `json:"items"`
}

type ActionsResponse struct {
	Items []model.ModerationActionLog `json:"items"`
}

type DecisionResponse struct {
	Entry  model.ModerationQueueEntry `json:"entry"`
	Action model.ModerationActionLog  `json:"action"`
}
