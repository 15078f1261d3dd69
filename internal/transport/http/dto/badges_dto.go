package dto

import (
	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type BadgeCatalogResponse struct {
	Items []model.Badge `json:"items"`
}

type UserBadgesResponse struct {
	Items []model.UserBadge `json:"items"`
}

type AwardBadgeRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Slug   string    `json:"slug"`
}
