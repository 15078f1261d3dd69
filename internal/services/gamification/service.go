package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/rules"
)

const defaultSweepPageSize = 200

var (
	ErrUnknownBadge   = errors.New("unknown badge")
	ErrAlreadyAwarded = errors.New("badge already awarded")
	ErrForbidden      = errors.New("badge grants require an admin")
	ErrNotMember      = errors.New("user is not a member of the tenant")
)

// BadgeStore keys awards by (tenant, user, slug): a person belonging to two
// tenants earns badges in each independently.
type BadgeStore interface {
	HasBadge(ctx context.Context, tenantID, userID uuid.UUID, slug string) (bool, error)
	// InsertUserBadge returns model.ErrConflict when the user already holds the badge in the tenant.
	InsertUserBadge(ctx context.Context, badge model.UserBadge) (model.UserBadge, error)
	ListUserBadges(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserBadge, error)
	ActivityCounters(ctx context.Context, tenantID, userID uuid.UUID) (model.ActivityCounters, error)
}

type MemberStore interface {
	GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (model.Membership, error)
	ListVerifiedMembers(ctx context.Context, after model.MemberCursor, limit int) ([]model.Membership, error)
}

type SweepResult struct {
	Users   int
	Awarded int
	Failed  int
}

type Service struct {
	badges   BadgeStore
	members  MemberStore
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(badges BadgeStore, members MemberStore, pageSize int, logger *zap.Logger) *Service {
	if pageSize <= 0 {
		pageSize = defaultSweepPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		badges:   badges,
		members:  members,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Catalog() []model.Badge {
	return rules.BadgeCatalog()
}

// GrantBadge is the manual award path. The actor's admin role is read from the
// current membership, not from the session it logged in with.
func (s *Service) GrantBadge(ctx context.Context, actor model.Actor, userID uuid.UUID, slug string) (model.UserBadge, error) {
	if s.members == nil {
		return model.UserBadge{}, fmt.Errorf("member store is not configured")
	}
	if !actor.Authenticated() {
		return model.UserBadge{}, ErrForbidden
	}
	admin, err := s.members.GetMembership(ctx, actor.TenantID, actor.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserBadge{}, ErrForbidden
	}
	if err != nil {
		return model.UserBadge{}, fmt.Errorf("load granting member: %w", err)
	}
	if !admin.Role.IsAdmin() {
		return model.UserBadge{}, ErrForbidden
	}

	badge, err := s.AwardBadge(ctx, actor.TenantID, userID, slug)
	if err != nil {
		return model.UserBadge{}, err
	}
	s.logger.Info("badge granted by admin",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("admin_id", actor.UserID.String()),
		zap.String("user_id", userID.String()),
		zap.String("badge", badge.BadgeSlug),
	)
	return badge, nil
}

// AwardBadge grants slug to a member of tenantID once. A second award,
// including one that loses a race on the unique constraint, yields ErrAlreadyAwarded.
func (s *Service) AwardBadge(ctx context.Context, tenantID, userID uuid.UUID, slug string) (model.UserBadge, error) {
	if s.badges == nil || s.members == nil {
		return model.UserBadge{}, fmt.Errorf("badge store is not configured")
	}
	badge, ok := rules.LookupBadge(slug)
	if !ok {
		return model.UserBadge{}, ErrUnknownBadge
	}

	_, err := s.members.GetMembership(ctx, tenantID, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserBadge{}, ErrNotMember
	}
	if err != nil {
		return model.UserBadge{}, fmt.Errorf("load member: %w", err)
	}

	return s.award(ctx, tenantID, userID, badge)
}

func (s *Service) award(ctx context.Context, tenantID, userID uuid.UUID, badge model.Badge) (model.UserBadge, error) {
	has, err := s.badges.HasBadge(ctx, tenantID, userID, badge.Slug)
	if err != nil {
		return model.UserBadge{}, fmt.Errorf("check badge: %w", err)
	}
	if has {
		return model.UserBadge{}, ErrAlreadyAwarded
	}

	awarded, err := s.badges.InsertUserBadge(ctx, model.UserBadge{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		BadgeSlug: badge.Slug,
		AwardedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.UserBadge{}, ErrAlreadyAwarded
		}
		return model.UserBadge{}, fmt.Errorf("insert user badge: %w", err)
	}

	s.logger.Info("badge awarded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("badge", badge.Slug),
	)
	return awarded, nil
}

// EvaluateUser awards every badge whose predicate now holds and returns the new ones.
func (s *Service) EvaluateUser(ctx context.Context, member model.Membership) ([]model.UserBadge, error) {
	if s.badges == nil {
		return nil, fmt.Errorf("badge store is not configured")
	}

	counters, err := s.badges.ActivityCounters(ctx, member.TenantID, member.UserID)
	if err != nil {
		return nil, fmt.Errorf("load activity counters: %w", err)
	}

	awarded := make([]model.UserBadge, 0)
	for _, slug := range rules.EarnedBadges(counters) {
		def, ok := rules.LookupBadge(slug)
		if !ok {
			continue
		}
		badge, err := s.award(ctx, member.TenantID, member.UserID, def)
		if errors.Is(err, ErrAlreadyAwarded) {
			continue
		}
		if err != nil {
			return awarded, err
		}
		awarded = append(awarded, badge)
	}
	return awarded, nil
}

// RunSweep evaluates every verified member page by page. A failing user is
// logged and skipped; the next run picks it up again.
func (s *Service) RunSweep(ctx context.Context) (SweepResult, error) {
	if s.members == nil {
		return SweepResult{}, fmt.Errorf("member lister is not configured")
	}

	result := SweepResult{}
	cursor := model.MemberCursor{}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := s.members.ListVerifiedMembers(ctx, cursor, s.pageSize)
		if err != nil {
			return result, fmt.Errorf("list verified members: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, member := range page {
			result.Users++
			awarded, err := s.EvaluateUser(ctx, member)
			result.Awarded += len(awarded)
			if err != nil {
				result.Failed++
				s.logger.Warn("badge evaluation failed",
					zap.String("tenant_id", member.TenantID.String()),
					zap.String("user_id", member.UserID.String()),
					zap.Error(err),
				)
			}
		}

		last := page[len(page)-1]
		cursor = model.MemberCursor{TenantID: last.TenantID, UserID: last.UserID}
		if len(page) < s.pageSize {
			break
		}
	}

	s.logger.Info("badge sweep completed",
		zap.Int("users", result.Users),
		zap.Int("awarded", result.Awarded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Service) ListUserBadges(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserBadge, error) {
	if s.badges == nil {
		return nil, fmt.Errorf("badge store is not configured")
	}
	badges, err := s.badges.ListUserBadges(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return badges, nil
}
