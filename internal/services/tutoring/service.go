package tutoring

import (
	"context"
	"fmt"
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

type RequestStore interface {
	InsertTutorialRequest(ctx context.Context, request model.TutorialRequest) (model.TutorialRequest, error)
	ListApprovedTutorialRequests(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.TutorialRequest, error)
}

type Submitter interface {
	Submit(ctx context.Context, actor model.Actor, itemType enums.ItemType, create func(ctx context.Context) (model.ContentRef, error)) (moderation.Submission, error)
}

type Draft struct {
	Subject     string
	Level       string
	Description string
}

type Service struct {
	requests   RequestStore
	moderation Submitter
	cache      listing.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(requests RequestStore, submitter Submitter, cache listing.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		requests:   requests,
		moderation: submitter,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Create submits a request for a tutor. The level is stored lower-cased.
func (s *Service) Create(ctx context.Context, actor model.Actor, draft Draft) (model.TutorialRequest, error) {
	if !actor.Authenticated() {
		return model.TutorialRequest{}, moderation.ErrUnauthenticated
	}
	if s.requests == nil || s.moderation == nil {
		return model.TutorialRequest{}, fmt.Errorf("tutoring dependencies are not configured")
	}

	var checker validate.Checker
	subject := strings.TrimSpace(draft.Subject)
	if checker.Required("subject", subject) {
		checker.Length("subject", subject, 2, 80)
	}
	level, ok := rules.MatchOption(rules.TutoringLevels, draft.Level)
	if !ok {
		checker.OneOf("level", draft.Level, rules.TutoringLevels)
	}
	description := strings.TrimSpace(draft.Description)
	checker.Length("description", description, 0, 2000)
	if err := checker.Err(); err != nil {
		return model.TutorialRequest{}, err
	}

	request := model.TutorialRequest{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		RequesterID: actor.UserID,
		Subject:     subject,
		Level:       level,
		Description: description,
		Status:      enums.ModerationStatusPending,
		CreatedAt:   s.now().UTC(),
	}

	var created model.TutorialRequest
	_, err := s.moderation.Submit(ctx, actor, enums.ItemTypeTutorialRequest, func(ctx context.Context) (model.ContentRef, error) {
		inserted, err := s.requests.InsertTutorialRequest(ctx, request)
		if err != nil {
			return model.ContentRef{}, err
		}
		created = inserted
		return inserted.Ref(), nil
	})
	if err != nil {
		return model.TutorialRequest{}, err
	}
	return created, nil
}

func (s *Service) ListApproved(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.TutorialRequest, error) {
	if s.requests == nil {
		return nil, fmt.Errorf("tutoring dependencies are not configured")
	}
	limit = listing.ClampLimit(limit)

	return listing.ReadThrough(ctx, s.cache, s.cacheTTL, s.logger, tenantID, enums.ItemTypeTutorialRequest.Listing(), "all:"+strconv.Itoa(limit),
		func(ctx context.Context) ([]model.TutorialRequest, error) {
			requests, err := s.requests.ListApprovedTutorialRequests(ctx, tenantID, limit)
			if err != nil {
				return nil, fmt.Errorf("list approved tutorial requests: %w", err)
			}
			return requests, nil
		})
}
