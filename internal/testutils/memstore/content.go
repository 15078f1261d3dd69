package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

// ContentView exposes one content table through the moderation registry contract.
type ContentView struct {
	store    *Store
	itemType enums.ItemType
}

func (s *Store) Content(itemType enums.ItemType) *ContentView {
	return &ContentView{store: s, itemType: itemType}
}

func (v *ContentView) Fetch(_ context.Context, tenantID, id uuid.UUID) (model.ContentRef, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	ref, ok := v.store.refLocked(v.itemType, id)
	if !ok || ref.TenantID != tenantID {
		return model.ContentRef{}, model.ErrNotFound
	}
	return ref, nil
}

func (v *ContentView) SetStatus(_ context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if err := v.store.injected("SetStatus"); err != nil {
		return err
	}

	d := &v.store.data
	switch v.itemType {
	case enums.ItemTypeMarketplaceItem:
		row, ok := d.items[id]
		if !ok || row.TenantID != tenantID {
			return model.ErrNotFound
		}
		row.Status = status
		d.items[id] = row
	case enums.ItemTypeServiceProfile:
		row, ok := d.profiles[id]
		if !ok || row.TenantID != tenantID {
			return model.ErrNotFound
		}
		row.Status = status
		d.profiles[id] = row
	case enums.ItemTypeProposal:
		row, ok := d.proposals[id]
		if !ok || row.TenantID != tenantID {
			return model.ErrNotFound
		}
		row.Status = status
		d.proposals[id] = row
	case enums.ItemTypeTutorialRequest:
		row, ok := d.tutorials[id]
		if !ok || row.TenantID != tenantID {
			return model.ErrNotFound
		}
		row.Status = status
		d.tutorials[id] = row
	default:
		return model.ErrNotFound
	}
	return nil
}

func (v *ContentView) ListUnqueued(_ context.Context, limit int) ([]model.ContentRef, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	queued := map[uuid.UUID]bool{}
	for _, e := range v.store.data.entries {
		if e.ItemType == v.itemType {
			queued[e.ItemID] = true
		}
	}

	out := make([]model.ContentRef, 0)
	for _, ref := range v.store.refsLocked(v.itemType) {
		if ref.Status == enums.ModerationStatusPending && !queued[ref.ID] {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) refLocked(itemType enums.ItemType, id uuid.UUID) (model.ContentRef, bool) {
	switch itemType {
	case enums.ItemTypeMarketplaceItem:
		row, ok := s.data.items[id]
		return row.Ref(), ok
	case enums.ItemTypeServiceProfile:
		row, ok := s.data.profiles[id]
		return row.Ref(), ok
	case enums.ItemTypeProposal:
		row, ok := s.data.proposals[id]
		return row.Ref(), ok
	case enums.ItemTypeTutorialRequest:
		row, ok := s.data.tutorials[id]
		return row.Ref(), ok
	}
	return model.ContentRef{}, false
}

func (s *Store) refsLocked(itemType enums.ItemType) []model.ContentRef {
	out := make([]model.ContentRef, 0)
	switch itemType {
	case enums.ItemTypeMarketplaceItem:
		for _, row := range s.data.items {
			out = append(out, row.Ref())
		}
	case enums.ItemTypeServiceProfile:
		for _, row := range s.data.profiles {
			out = append(out, row.Ref())
		}
	case enums.ItemTypeProposal:
		for _, row := range s.data.proposals {
			out = append(out, row.Ref())
		}
	case enums.ItemTypeTutorialRequest:
		for _, row := range s.data.tutorials {
			out = append(out, row.Ref())
		}
	}
	return out
}

// Marketplace items.

func (s *Store) InsertItem(_ context.Context, item model.MarketplaceItem) (model.MarketplaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertItem"); err != nil {
		return model.MarketplaceItem{}, err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.ImageKeys = append([]string(nil), item.ImageKeys...)
	s.data.items[item.ID] = item
	return item, nil
}

func (s *Store) GetItem(_ context.Context, tenantID, id uuid.UUID) (model.MarketplaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data.items[id]
	if !ok || item.TenantID != tenantID {
		return model.MarketplaceItem{}, model.ErrNotFound
	}
	return item, nil
}

func (s *Store) ListApprovedItems(_ context.Context, tenantID uuid.UUID, category string, limit int) ([]model.MarketplaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.MarketplaceItem, 0)
	for _, item := range s.data.items {
		if item.TenantID != tenantID || item.Status != enums.ModerationStatusApproved || item.SoldAt != nil {
			continue
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkItemSold(_ context.Context, tenantID, id uuid.UUID, at time.Time) (model.MarketplaceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data.items[id]
	if !ok || item.TenantID != tenantID {
		return model.MarketplaceItem{}, model.ErrNotFound
	}
	if item.Status != enums.ModerationStatusApproved || item.SoldAt != nil {
		return model.MarketplaceItem{}, model.ErrConflict
	}
	item.SoldAt = &at
	s.data.items[id] = item
	return item, nil
}

// Service profiles.

func (s *Store) InsertProfile(_ context.Context, profile model.ServiceProfile) (model.ServiceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertProfile"); err != nil {
		return model.ServiceProfile{}, err
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.data.profiles[profile.ID] = profile
	return profile, nil
}

func (s *Store) ListApprovedProfiles(_ context.Context, tenantID uuid.UUID, category string, limit int) ([]model.ServiceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ServiceProfile, 0)
	for _, p := range s.data.profiles {
		if p.TenantID != tenantID || p.Status != enums.ModerationStatusApproved {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessName < out[j].BusinessName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Proposals.

func (s *Store) InsertProposal(_ context.Context, proposal model.Proposal) (model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertProposal"); err != nil {
		return model.Proposal{}, err
	}
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	s.data.proposals[proposal.ID] = proposal
	return proposal, nil
}

func (s *Store) ListApprovedProposals(_ context.Context, tenantID uuid.UUID, limit int) ([]model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Proposal, 0)
	for _, p := range s.data.proposals {
		if p.TenantID == tenantID && p.Status == enums.ModerationStatusApproved {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Tutorial requests.

func (s *Store) InsertTutorialRequest(_ context.Context, request model.TutorialRequest) (model.TutorialRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertTutorialRequest"); err != nil {
		return model.TutorialRequest{}, err
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	s.data.tutorials[request.ID] = request
	return request, nil
}

func (s *Store) ListApprovedTutorialRequests(_ context.Context, tenantID uuid.UUID, limit int) ([]model.TutorialRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.TutorialRequest, 0)
	for _, r := range s.data.tutorials {
		if r.TenantID == tenantID && r.Status == enums.ModerationStatusApproved {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ContentStatus reads a row's status directly, for assertions.
func (s *Store) ContentStatus(itemType enums.ItemType, id uuid.UUID) (enums.ModerationStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.refLocked(itemType, id)
	return ref.Status, ok
}

// PutItem seeds a row that bypassed the workflow, e.g. an orphan left by an older release.
func (s *Store) PutItem(item model.MarketplaceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.items[item.ID] = item
}

func (s *Store) PutProposal(p model.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.proposals[p.ID] = p
}
