package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

func (s *Store) SetCounters(tenantID, userID uuid.UUID, counters model.ActivityCounters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.counters[memberKey{tenantID, userID}] = counters
}

// ActivityCounters merges seeded counters with the ones derivable from stored content.
func (s *Store) ActivityCounters(_ context.Context, tenantID, userID uuid.UUID) (model.ActivityCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ActivityCounters:" + userID.String()); err != nil {
		return nil, err
	}

	out := model.ActivityCounters{}
	for metric, n := range s.data.counters[memberKey{tenantID, userID}] {
		out[metric] = n
	}
	for _, item := range s.data.items {
		if item.TenantID == tenantID && item.SellerID == userID && item.SoldAt != nil {
			out[model.MetricSoldItems]++
		}
	}
	for _, p := range s.data.profiles {
		if p.TenantID == tenantID && p.OwnerID == userID && p.Volunteer && p.Status == enums.ModerationStatusApproved {
			out[model.MetricVolunteerProfiles]++
		}
	}
	return out, nil
}

func (s *Store) HasBadge(_ context.Context, tenantID, userID uuid.UUID, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasBadgeLocked(tenantID, userID, slug), nil
}

func (s *Store) hasBadgeLocked(tenantID, userID uuid.UUID, slug string) bool {
	for _, b := range s.data.badges {
		if b.TenantID == tenantID && b.UserID == userID && b.BadgeSlug == slug {
			return true
		}
	}
	return false
}

func (s *Store) InsertUserBadge(_ context.Context, badge model.UserBadge) (model.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertUserBadge"); err != nil {
		return model.UserBadge{}, err
	}
	if s.hasBadgeLocked(badge.TenantID, badge.UserID, badge.BadgeSlug) {
		return model.UserBadge{}, fmt.Errorf("insert user badge: %w", model.ErrConflict)
	}
	if badge.ID == uuid.Nil {
		badge.ID = uuid.New()
	}
	s.data.badges = append(s.data.badges, badge)
	return badge, nil
}

func (s *Store) ListUserBadges(_ context.Context, tenantID, userID uuid.UUID) ([]model.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.UserBadge, 0)
	for _, b := range s.data.badges {
		if b.TenantID == tenantID && b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.Before(out[j].AwardedAt) })
	return out, nil
}
