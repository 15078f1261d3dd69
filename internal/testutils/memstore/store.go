// Package memstore is an in-memory stand-in for the Postgres repositories,
// used by service tests. Transactions are emulated with whole-store snapshots.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type txKey struct{}

type memberKey struct {
	tenantID uuid.UUID
	userID   uuid.UUID
}

type state struct {
	entries   map[uuid.UUID]model.ModerationQueueEntry
	actions   []model.ModerationActionLog
	members   map[memberKey]model.Membership
	items     map[uuid.UUID]model.MarketplaceItem
	profiles  map[uuid.UUID]model.ServiceProfile
	proposals map[uuid.UUID]model.Proposal
	tutorials map[uuid.UUID]model.TutorialRequest
	badges    []model.UserBadge
	counters  map[memberKey]model.ActivityCounters
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data state
	fail map[string]error
}

func New() *Store {
	return &Store{
		data: state{
			entries:   map[uuid.UUID]model.ModerationQueueEntry{},
			members:   map[memberKey]model.Membership{},
			items:     map[uuid.UUID]model.MarketplaceItem{},
			profiles:  map[uuid.UUID]model.ServiceProfile{},
			proposals: map[uuid.UUID]model.Proposal{},
			tutorials: map[uuid.UUID]model.TutorialRequest{},
			counters:  map[memberKey]model.ActivityCounters{},
		},
		fail: map[string]error{},
	}
}

// FailOn makes the next call of the named store method return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) injected(op string) error {
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

// WithinTx restores the snapshot taken at start when fn fails. Nested calls join the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (d state) clone() state {
	out := state{
		entries:   make(map[uuid.UUID]model.ModerationQueueEntry, len(d.entries)),
		actions:   append([]model.ModerationActionLog(nil), d.actions...),
		members:   make(map[memberKey]model.Membership, len(d.members)),
		items:     make(map[uuid.UUID]model.MarketplaceItem, len(d.items)),
		profiles:  make(map[uuid.UUID]model.ServiceProfile, len(d.profiles)),
		proposals: make(map[uuid.UUID]model.Proposal, len(d.proposals)),
		tutorials: make(map[uuid.UUID]model.TutorialRequest, len(d.tutorials)),
		badges:    append([]model.UserBadge(nil), d.badges...),
		counters:  make(map[memberKey]model.ActivityCounters, len(d.counters)),
	}
	for k, v := range d.entries {
		out.entries[k] = v
	}
	for k, v := range d.members {
		out.members[k] = v
	}
	for k, v := range d.items {
		v.ImageKeys = append([]string(nil), v.ImageKeys...)
		out.items[k] = v
	}
	for k, v := range d.profiles {
		out.profiles[k] = v
	}
	for k, v := range d.proposals {
		out.proposals[k] = v
	}
	for k, v := range d.tutorials {
		out.tutorials[k] = v
	}
	for k, v := range d.counters {
		copied := model.ActivityCounters{}
		for metric, n := range v {
			copied[metric] = n
		}
		out.counters[k] = copied
	}
	return out
}

// Memberships.

func (s *Store) PutMembership(m model.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.members[memberKey{m.TenantID, m.UserID}] = m
}

func (s *Store) GetMembership(_ context.Context, tenantID, userID uuid.UUID) (model.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.members[memberKey{tenantID, userID}]
	if !ok {
		return model.Membership{}, model.ErrNotFound
	}
	return m, nil
}

func (s *Store) ListVerifiedMembers(_ context.Context, after model.MemberCursor, limit int) ([]model.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ListVerifiedMembers"); err != nil {
		return nil, err
	}

	out := make([]model.Membership, 0)
	for _, m := range s.data.members {
		if !m.Verified {
			continue
		}
		if !cursorAfter(m, after) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TenantID != out[j].TenantID {
			return out[i].TenantID.String() < out[j].TenantID.String()
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cursorAfter(m model.Membership, after model.MemberCursor) bool {
	if after.TenantID == uuid.Nil && after.UserID == uuid.Nil {
		return true
	}
	mt, at := m.TenantID.String(), after.TenantID.String()
	if mt != at {
		return mt > at
	}
	return m.UserID.String() > after.UserID.String()
}

// Moderation queue.

func (s *Store) HasPending(_ context.Context, itemType enums.ItemType, itemID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPendingLocked(itemType, itemID), nil
}

func (s *Store) hasPendingLocked(itemType enums.ItemType, itemID uuid.UUID) bool {
	for _, e := range s.data.entries {
		if e.ItemType == itemType && e.ItemID == itemID && e.Status == enums.ModerationStatusPending {
			return true
		}
	}
	return false
}

func (s *Store) InsertEntry(_ context.Context, entry model.ModerationQueueEntry) (model.ModerationQueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertEntry"); err != nil {
		return model.ModerationQueueEntry{}, err
	}
	if entry.Status == enums.ModerationStatusPending && s.hasPendingLocked(entry.ItemType, entry.ItemID) {
		return model.ModerationQueueEntry{}, fmt.Errorf("insert entry: %w", model.ErrConflict)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.data.entries[entry.ID] = entry
	return entry, nil
}

func (s *Store) GetEntry(_ context.Context, tenantID, id uuid.UUID) (model.ModerationQueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.entries[id]
	if !ok || e.TenantID != tenantID {
		return model.ModerationQueueEntry{}, model.ErrNotFound
	}
	return e, nil
}

func (s *Store) SetAssignee(_ context.Context, tenantID, id uuid.UUID, assignee *uuid.UUID) (model.ModerationQueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.entries[id]
	if !ok || e.TenantID != tenantID {
		return model.ModerationQueueEntry{}, model.ErrNotFound
	}
	if assignee != nil {
		value := *assignee
		e.AssignedTo = &value
	} else {
		e.AssignedTo = nil
	}
	s.data.entries[id] = e
	return e, nil
}

func (s *Store) ResolveEntry(_ context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus, resolvedBy uuid.UUID, at time.Time) (model.ModerationQueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ResolveEntry"); err != nil {
		return model.ModerationQueueEntry{}, err
	}
	e, ok := s.data.entries[id]
	if !ok || e.TenantID != tenantID {
		return model.ModerationQueueEntry{}, model.ErrNotFound
	}
	if e.Status != enums.ModerationStatusPending {
		return model.ModerationQueueEntry{}, model.ErrConflict
	}
	e.Status = status
	e.ResolvedAt = &at
	e.ResolvedBy = &resolvedBy
	s.data.entries[id] = e
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, filter model.QueueFilter) ([]model.ModerationQueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ModerationQueueEntry, 0)
	for _, e := range s.data.entries {
		if e.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.ItemType != "" && e.ItemType != filter.ItemType {
			continue
		}
		if filter.AssignedTo != nil && (e.AssignedTo == nil || *e.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Entries returns every queue entry for an item, oldest first.
func (s *Store) Entries(itemType enums.ItemType, itemID uuid.UUID) []model.ModerationQueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ModerationQueueEntry, 0)
	for _, e := range s.data.entries {
		if e.ItemType == itemType && e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Action log.

func (s *Store) AppendAction(_ context.Context, action model.ModerationActionLog) (model.ModerationActionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("AppendAction"); err != nil {
		return model.ModerationActionLog{}, err
	}
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	s.data.actions = append(s.data.actions, action)
	return action, nil
}

func (s *Store) ListActions(_ context.Context, moderationID uuid.UUID) ([]model.ModerationActionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ModerationActionLog, 0)
	for _, a := range s.data.actions {
		if a.ModerationID == moderationID {
			out = append(out, a)
		}
	}
	return out, nil
}
