package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
)

type MarketplaceItem struct {
	ID          uuid.UUID              `json:"id"`
	TenantID    uuid.UUID              `json:"tenant_id"`
	SellerID    uuid.UUID              `json:"seller_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	PriceCents  int64                  `json:"price_cents"`
	Category    string                 `json:"category"`
	Condition   string                 `json:"condition"`
	ImageKeys   []string               `json:"image_keys"`
	Status      enums.ModerationStatus `json:"status"`
	SoldAt      *time.Time             `json:"sold_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (i MarketplaceItem) Ref() ContentRef {
	return ContentRef{
		ItemType:  enums.ItemTypeMarketplaceItem,
		ID:        i.ID,
		TenantID:  i.TenantID,
		OwnerID:   i.SellerID,
		Title:     i.Title,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
	}
}

type ServiceProfile struct {
	ID           uuid.UUID              `json:"id"`
	TenantID     uuid.UUID              `json:"tenant_id"`
	OwnerID      uuid.UUID              `json:"owner_id"`
	BusinessName string                 `json:"business_name"`
	Category     string                 `json:"category"`
	Description  string                 `json:"description"`
	Phone        string                 `json:"phone"`
	WhatsApp     string                 `json:"whatsapp"`
	Volunteer    bool                   `json:"volunteer"`
	Status       enums.ModerationStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
}

func (p ServiceProfile) Ref() ContentRef {
	return ContentRef{
		ItemType:  enums.ItemTypeServiceProfile,
		ID:        p.ID,
		TenantID:  p.TenantID,
		OwnerID:   p.OwnerID,
		Title:     p.BusinessName,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

type Proposal struct {
	ID          uuid.UUID              `json:"id"`
	TenantID    uuid.UUID              `json:"tenant_id"`
	AuthorID    uuid.UUID              `json:"author_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Status      enums.ModerationStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (p Proposal) Ref() ContentRef {
	return ContentRef{
		ItemType:  enums.ItemTypeProposal,
		ID:        p.ID,
		TenantID:  p.TenantID,
		OwnerID:   p.AuthorID,
		Title:     p.Title,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

type TutorialRequest struct {
	ID          uuid.UUID              `json:"id"`
	TenantID    uuid.UUID              `json:"tenant_id"`
	RequesterID uuid.UUID              `json:"requester_id"`
	Subject     string                 `json:"subject"`
	Level       string                 `json:"level"`
	Description string                 `json:"description"`
	Status      enums.ModerationStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (r TutorialRequest) Ref() ContentRef {
	return ContentRef{
		ItemType:  enums.ItemTypeTutorialRequest,
		ID:        r.ID,
		TenantID:  r.TenantID,
		OwnerID:   r.RequesterID,
		Title:     r.Subject,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
