package proposals

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

type ProposalStore interface {
	InsertProposal(ctx context.Context, proposal model.Proposal) (model.Proposal, error)
	ListApprovedProposals(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Proposal, error)
}

type Submitter interface {
	Submit(ctx context.Context, actor model.Actor, itemType enums.ItemType, create func(ctx context.Context) (model.ContentRef, error)) (moderation.Submission, error)
}

type Draft struct {
	Title       string
	Description string
	Category    string
}

type Service struct {
	proposals  ProposalStore
	moderation Submitter
	cache      listing.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(proposals ProposalStore, submitter Submitter, cache listing.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		proposals:  proposals,
		moderation: submitter,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor model.Actor, draft Draft) (model.Proposal, error) {
	if !actor.Authenticated() {
		return model.Proposal{}, moderation.ErrUnauthenticated
	}
	if s.proposals == nil || s.moderation == nil {
		return model.Proposal{}, fmt.Errorf("proposal dependencies are not configured")
	}

	var checker validate.Checker
	title := strings.TrimSpace(draft.Title)
	if checker.Required("title", title) {
		checker.Length("title", title, 5, 150)
	}
	description := strings.TrimSpace(draft.Description)
	if checker.Required("description", description) {
		checker.Length("description", description, 20, 5000)
	}
	category, ok := rules.MatchOption(rules.ProposalCategories, draft.Category)
	if !ok {
		checker.OneOf("category", draft.Category, rules.ProposalCategories)
	}
	if err := checker.Err(); err != nil {
		return model.Proposal{}, err
	}

	proposal := model.Proposal{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		AuthorID:    actor.UserID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      enums.ModerationStatusPending,
		CreatedAt:   s.now().UTC(),
	}

	var created model.Proposal
	_, err := s.moderation.Submit(ctx, actor, enums.ItemTypeProposal, func(ctx context.Context) (model.ContentRef, error) {
		inserted, err := s.proposals.InsertProposal(ctx, proposal)
		if err != nil {
			return model.ContentRef{}, err
		}
		created = inserted
		return inserted.Ref(), nil
	})
	if err != nil {
		return model.Proposal{}, err
	}
	return created, nil
}

func (s *Service) ListApproved(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Proposal, error) {
	if s.proposals == nil {
		return nil, fmt.Errorf("proposal dependencies are not configured")
	}
	limit = listing.ClampLimit(limit)

	return listing.ReadThrough(ctx, s.cache, s.cacheTTL, s.logger, tenantID, enums.ItemTypeProposal.Listing(), "all:"+strconv.Itoa(limit),
		func(ctx context.Context) ([]model.Proposal, error) {
			proposals, err := s.proposals.ListApprovedProposals(ctx, tenantID, limit)
			if err != nil {
				return nil, fmt.Errorf("list approved proposals: %w", err)
			}
			return proposals, nil
		})
}
