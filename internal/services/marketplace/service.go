package marketplace

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/rules"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/listing"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
)

const (
	maxPriceCents = 100000 * 100
	maxImages     = 6
)

var (
	ErrNotOwner    = errors.New("only the seller can change this item")
	ErrNotSellable = errors.New("item is not approved or already sold")
)

type ItemStore interface {
	InsertItem(ctx context.Context, item model.MarketplaceItem) (model.MarketplaceItem, error)
	GetItem(ctx context.Context, tenantID, id uuid.UUID) (model.MarketplaceItem, error)
	ListApprovedItems(ctx context.Context, tenantID uuid.UUID, category string, limit int) ([]model.MarketplaceItem, error)
	MarkItemSold(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (model.MarketplaceItem, error)
}

type Submitter interface {
	Submit(ctx context.Context, actor model.Actor, itemType enums.ItemType, create func(ctx context.Context) (model.ContentRef, error)) (moderation.Submission, error)
}

type ItemDraft struct {
	Title       string
	Description string
	// Price is in euros.
	Price     float64
	Category  string
	Condition string
	ImageKeys []string
}

type ItemFilter struct {
	Category string
	Limit    int
}

type Service struct {
	items      ItemStore
	moderation Submitter
	storage    ObjectStorage
	cache      listing.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(items ItemStore, submitter Submitter, storage ObjectStorage, cache listing.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		items:      items,
		moderation: submitter,
		storage:    storage,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateItem validates the draft and submits it for review.
func (s *Service) CreateItem(ctx context.Context, actor model.Actor, draft ItemDraft) (model.MarketplaceItem, error) {
	if !actor.Authenticated() {
		return model.MarketplaceItem{}, moderation.ErrUnauthenticated
	}
	if s.items == nil || s.moderation == nil {
		return model.MarketplaceItem{}, fmt.Errorf("marketplace dependencies are not configured")
	}

	item, err := s.normalize(actor, draft)
	if err != nil {
		return model.MarketplaceItem{}, err
	}

	var created model.MarketplaceItem
	_, err = s.moderation.Submit(ctx, actor, enums.ItemTypeMarketplaceItem, func(ctx context.Context) (model.ContentRef, error) {
		inserted, err := s.items.InsertItem(ctx, item)
		if err != nil {
			return model.ContentRef{}, err
		}
		created = inserted
		return inserted.Ref(), nil
	})
	if err != nil {
		return model.MarketplaceItem{}, err
	}

	return created, nil
}

func (s *Service) normalize(actor model.Actor, draft ItemDraft) (model.MarketplaceItem, error) {
	var checker validate.Checker

	title := strings.TrimSpace(draft.Title)
	if checker.Required("title", title) {
		checker.Length("title", title, 3, 120)
	}
	description := strings.TrimSpace(draft.Description)
	checker.Length("description", description, 0, 2000)

	var cents int64
	if math.IsNaN(draft.Price) || math.IsInf(draft.Price, 0) {
		checker.Add("price", "invalid", "must be a number")
	} else {
		cents = int64(math.Round(draft.Price * 100))
		checker.Range("price", cents, 0, maxPriceCents)
	}

	category, ok := rules.MatchOption(rules.MarketplaceCategories, draft.Category)
	if !ok {
		checker.OneOf("category", draft.Category, rules.MarketplaceCategories)
	}
	condition, ok := rules.MatchOption(rules.ItemConditions, draft.Condition)
	if !ok {
		checker.OneOf("condition", draft.Condition, rules.ItemConditions)
	}

	checker.MaxItems("image_keys", len(draft.ImageKeys), maxImages)
	prefix := imagePrefix(actor.TenantID, actor.UserID)
	keys := make([]string, 0, len(draft.ImageKeys))
	for _, key := range draft.ImageKeys {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
			checker.Add("image_keys", "invalid", "contains an image that was not uploaded by you")
			break
		}
		keys = append(keys, key)
	}

	if err := checker.Err(); err != nil {
		return model.MarketplaceItem{}, err
	}

	return model.MarketplaceItem{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		SellerID:    actor.UserID,
		Title:       title,
		Description: description,
		PriceCents:  cents,
		Category:    category,
		Condition:   condition,
		ImageKeys:   keys,
		Status:      enums.ModerationStatusPending,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// GetApprovedItems lists approved unsold items, newest first.
func (s *Service) GetApprovedItems(ctx context.Context, tenantID uuid.UUID, filter ItemFilter) ([]model.MarketplaceItem, error) {
	if s.items == nil {
		return nil, fmt.Errorf("marketplace dependencies are not configured")
	}

	category := ""
	if strings.TrimSpace(filter.Category) != "" {
		matched, ok := rules.MatchOption(rules.MarketplaceCategories, filter.Category)
		if !ok {
			return nil, validate.Errors{{Field: "category", Code: "invalid_option", Message: "must be one of: " + strings.Join(rules.MarketplaceCategories, ", ")}}
		}
		category = matched
	}
	limit := listing.ClampLimit(filter.Limit)

	variant := "all"
	if category != "" {
		variant = category
	}
	variant += ":" + strconv.Itoa(limit)

	return listing.ReadThrough(ctx, s.cache, s.cacheTTL, s.logger, tenantID, enums.ItemTypeMarketplaceItem.Listing(), variant,
		func(ctx context.Context) ([]model.MarketplaceItem, error) {
			items, err := s.items.ListApprovedItems(ctx, tenantID, category, limit)
			if err != nil {
				return nil, fmt.Errorf("list approved items: %w", err)
			}
			return items, nil
		})
}

func (s *Service) GetItem(ctx context.Context, actor model.Actor, itemID uuid.UUID) (model.MarketplaceItem, error) {
	if !actor.Authenticated() {
		return model.MarketplaceItem{}, moderation.ErrUnauthenticated
	}

	item, err := s.items.GetItem(ctx, actor.TenantID, itemID)
	if err != nil {
		return model.MarketplaceItem{}, fmt.Errorf("get item: %w", err)
	}
	if item.Status != enums.ModerationStatusApproved && item.SellerID != actor.UserID {
		return model.MarketplaceItem{}, fmt.Errorf("get item: %w", model.ErrNotFound)
	}
	return item, nil
}

// MarkSold closes an approved listing. Only the seller may do it.
func (s *Service) MarkSold(ctx context.Context, actor model.Actor, itemID uuid.UUID) (model.MarketplaceItem, error) {
	if !actor.Authenticated() {
		return model.MarketplaceItem{}, moderation.ErrUnauthenticated
	}
	if s.items == nil {
		return model.MarketplaceItem{}, fmt.Errorf("marketplace dependencies are not configured")
	}

	item, err := s.items.GetItem(ctx, actor.TenantID, itemID)
	if err != nil {
		return model.MarketplaceItem{}, fmt.Errorf("get item: %w", err)
	}
	if item.SellerID != actor.UserID {
		return model.MarketplaceItem{}, ErrNotOwner
	}

	sold, err := s.items.MarkItemSold(ctx, actor.TenantID, itemID, s.now().UTC())
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.MarketplaceItem{}, ErrNotSellable
		}
		return model.MarketplaceItem{}, fmt.Errorf("mark sold: %w", err)
	}

	listing.Invalidate(ctx, s.cache, s.logger, actor.TenantID, enums.ItemTypeMarketplaceItem.Listing())
	return sold, nil
}
