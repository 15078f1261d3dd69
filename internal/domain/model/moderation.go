package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
)

type ModerationQueueEntry struct {
	ID          uuid.UUID              `json:"id"`
	ItemType    enums.ItemType         `json:"item_type"`
	ItemID      uuid.UUID              `json:"item_id"`
	TenantID    uuid.UUID              `json:"tenant_id"`
	SubmittedBy uuid.UUID              `json:"submitted_by"`
	AssignedTo  *uuid.UUID             `json:"assigned_to,omitempty"`
	Status      enums.ModerationStatus `json:"status"`
	Source      enums.QueueSource      `json:"source"`
	Reason      *string                `json:"reason,omitempty"`
	ResolvedAt  *time.Time             `json:"resolved_at,omitempty"`
	ResolvedBy  *uuid.UUID             `json:"resolved_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type ModerationActionLog struct {
	ID           uuid.UUID              `json:"id"`
	ModerationID uuid.UUID              `json:"moderation_id"`
	ModeratorID  uuid.UUID              `json:"moderator_id"`
	Action       enums.ModerationAction `json:"action"`
	Notes        *string                `json:"notes,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ContentRef is the type-independent view of a moderatable row.
type ContentRef struct {
	ItemType  enums.ItemType
	ID        uuid.UUID
	TenantID  uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Status    enums.ModerationStatus
	CreatedAt time.Time
}

type QueueFilter struct {
	TenantID   uuid.UUID
	Status     enums.ModerationStatus
	ItemType   enums.ItemType
	AssignedTo *uuid.UUID
	Limit      int
}
