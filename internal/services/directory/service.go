package directory

import (
	"context"
	"fmt"
	"net/url"
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
	// Italian numbers without a country code get this prefix.
	defaultCountryCode = "39"
	minPhoneDigits     = 8
	maxPhoneDigits     = 15
)

type ProfileStore interface {
	InsertProfile(ctx context.Context, profile model.ServiceProfile) (model.ServiceProfile, error)
	ListApprovedProfiles(ctx context.Context, tenantID uuid.UUID, category string, limit int) ([]model.ServiceProfile, error)
}

type Submitter interface {
	Submit(ctx context.Context, actor model.Actor, itemType enums.ItemType, create func(ctx context.Context) (model.ContentRef, error)) (moderation.Submission, error)
}

type ProfileDraft struct {
	BusinessName string
	Category     string
	Description  string
	Phone        string
	WhatsApp     string
	Volunteer    bool
}

type Service struct {
	profiles   ProfileStore
	moderation Submitter
	cache      listing.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(profiles ProfileStore, submitter Submitter, cache listing.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles:   profiles,
		moderation: submitter,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) CreateProfile(ctx context.Context, actor model.Actor, draft ProfileDraft) (model.ServiceProfile, error) {
	if !actor.Authenticated() {
		return model.ServiceProfile{}, moderation.ErrUnauthenticated
	}
	if s.profiles == nil || s.moderation == nil {
		return model.ServiceProfile{}, fmt.Errorf("directory dependencies are not configured")
	}

	var checker validate.Checker
	name := strings.TrimSpace(draft.BusinessName)
	if checker.Required("business_name", name) {
		checker.Length("business_name", name, 2, 100)
	}
	category, ok := rules.MatchOption(rules.ServiceCategories, draft.Category)
	if !ok {
		checker.OneOf("category", draft.Category, rules.ServiceCategories)
	}
	description := strings.TrimSpace(draft.Description)
	checker.Length("description", description, 0, 1000)

	phone, ok := NormalizePhone(draft.Phone)
	if !ok {
		checker.Add("phone", "invalid", "must be a valid phone number")
	}
	whatsapp, ok := NormalizePhone(draft.WhatsApp)
	if !ok {
		checker.Add("whatsapp", "invalid", "must be a valid phone number")
	}
	if err := checker.Err(); err != nil {
		return model.ServiceProfile{}, err
	}

	profile := model.ServiceProfile{
		ID:           uuid.New(),
		TenantID:     actor.TenantID,
		OwnerID:      actor.UserID,
		BusinessName: name,
		Category:     category,
		Description:  description,
		Phone:        phone,
		WhatsApp:     whatsapp,
		Volunteer:    draft.Volunteer,
		Status:       enums.ModerationStatusPending,
		CreatedAt:    s.now().UTC(),
	}

	var created model.ServiceProfile
	_, err := s.moderation.Submit(ctx, actor, enums.ItemTypeServiceProfile, func(ctx context.Context) (model.ContentRef, error) {
		inserted, err := s.profiles.InsertProfile(ctx, profile)
		if err != nil {
			return model.ContentRef{}, err
		}
		created = inserted
		return inserted.Ref(), nil
	})
	if err != nil {
		return model.ServiceProfile{}, err
	}
	return created, nil
}

// ListApproved returns the public directory, optionally narrowed to one category.
func (s *Service) ListApproved(ctx context.Context, tenantID uuid.UUID, category string, limit int) ([]model.ServiceProfile, error) {
	if s.profiles == nil {
		return nil, fmt.Errorf("directory dependencies are not configured")
	}

	if strings.TrimSpace(category) != "" {
		matched, ok := rules.MatchOption(rules.ServiceCategories, category)
		if !ok {
			return nil, validate.Errors{{Field: "category", Code: "invalid_option", Message: "must be one of: " + strings.Join(rules.ServiceCategories, ", ")}}
		}
		category = matched
	} else {
		category = ""
	}
	limit = listing.ClampLimit(limit)

	variant := "all"
	if category != "" {
		variant = category
	}
	variant += ":" + strconv.Itoa(limit)

	return listing.ReadThrough(ctx, s.cache, s.cacheTTL, s.logger, tenantID, enums.ItemTypeServiceProfile.Listing(), variant,
		func(ctx context.Context) ([]model.ServiceProfile, error) {
			profiles, err := s.profiles.ListApprovedProfiles(ctx, tenantID, category, limit)
			if err != nil {
				return nil, fmt.Errorf("list approved profiles: %w", err)
			}
			return profiles, nil
		})
}

// NormalizePhone keeps the digits of raw, turning a leading "+" or "00" into the
// international form and prefixing the Italian code to national numbers.
// An empty input is valid and stays empty.
func NormalizePhone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", true
	}

	international := strings.HasPrefix(trimmed, "+")
	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '/':
		default:
			return "", false
		}
	}

	digits := b.String()
	switch {
	case international:
	case strings.HasPrefix(digits, "00"):
		digits = digits[2:]
	default:
		digits = defaultCountryCode + digits
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}

// WhatsAppLink builds a click-to-chat link with a prefilled message.
func WhatsAppLink(number, text string) (string, error) {
	digits, ok := NormalizePhone(number)
	if !ok || digits == "" {
		return "", validate.Errors{{Field: "whatsapp", Code: "invalid", Message: "must be a valid phone number"}}
	}

	link := "https://wa.me/" + digits
	if text = strings.TrimSpace(text); text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link, nil
}
