package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type CreateItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	ImageKeys   []string `json:"image_keys"`
}

type ItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	SellerID    uuid.UUID  `json:"seller_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Condition   string     `json:"condition"`
	Status      string     `json:"status"`
	ImageURLs   []string   `json:"image_urls"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ItemsResponse struct {
	Items []ItemResponse `json:"items"`
}

type ImageUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type CreateProfileRequest struct {
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Phone        string `json:"phone"`
	WhatsApp     string `json:"whatsapp"`
	Volunteer    bool   `json:"volunteer"`
}

type ProfileResponse struct {
	model.ServiceProfile
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

type ProfilesResponse struct {
	Items []ProfileResponse `json:"items"`
}

type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type ProposalsResponse struct {
	Items []model.Proposal `json:"items"`
}

type CreateTutorialRequest struct {
	Subject     string `json:"subject"`
	Level       string `json:"level"`
	Description string `json:"description"`
}

type TutorialRequestsResponse struct {
	Items []model.TutorialRequest `json:"items"`
}
