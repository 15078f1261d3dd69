package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/pkg/validate"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxReasonLength = 500
)

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type QueueStore interface {
	HasPending(ctx context.Context, itemType enums.ItemType, itemID uuid.UUID) (bool, error)
	// InsertEntry returns model.ErrConflict when a pending entry for the item already exists.
	InsertEntry(ctx context.Context, entry model.ModerationQueueEntry) (model.ModerationQueueEntry, error)
	GetEntry(ctx context.Context, tenantID, id uuid.UUID) (model.ModerationQueueEntry, error)
	SetAssignee(ctx context.Context, tenantID, id uuid.UUID, assignee *uuid.UUID) (model.ModerationQueueEntry, error)
	// ResolveEntry only moves pending entries and returns model.ErrConflict otherwise.
	ResolveEntry(ctx context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus, resolvedBy uuid.UUID, at time.Time) (model.ModerationQueueEntry, error)
	ListEntries(ctx context.Context, filter model.QueueFilter) ([]model.ModerationQueueEntry, error)
}

type ActionLogStore interface {
	AppendAction(ctx context.Context, action model.ModerationActionLog) (model.ModerationActionLog, error)
	ListActions(ctx context.Context, moderationID uuid.UUID) ([]model.ModerationActionLog, error)
}

type MembershipStore interface {
	GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (model.Membership, error)
}

type ReportLimiter interface {
	// RetryAfterReport reads the reporter's windows without counting a hit.
	RetryAfterReport(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
	AllowReport(ctx context.Context, tenantID, userID uuid.UUID) (int64, bool, error)
}

type ListingCache interface {
	InvalidateListing(ctx context.Context, tenantID uuid.UUID, listing string) error
}

// Notifier receives committed workflow events. Implementations must not block for long.
type Notifier interface {
	EntryQueued(ctx context.Context, entry model.ModerationQueueEntry, content model.ContentRef)
	EntryAssigned(ctx context.Context, entry model.ModerationQueueEntry)
	EntryResolved(ctx context.Context, entry model.ModerationQueueEntry, content model.ContentRef, notes string)
}

type Dependencies struct {
	Tx          TxManager
	Queue       QueueStore
	Actions     ActionLogStore
	Memberships MembershipStore
	Registry    *Registry
	Limiter     ReportLimiter
	Cache       ListingCache
	Notifier    Notifier
	Logger      *zap.Logger
	PageSize    int
}

type Service struct {
	tx          TxManager
	queue       QueueStore
	actions     ActionLogStore
	memberships MembershipStore
	registry    *Registry
	limiter     ReportLimiter
	cache       ListingCache
	notifier    Notifier
	logger      *zap.Logger
	pageSize    int
	now         func() time.Time
}

type Submission struct {
	Entry   model.ModerationQueueEntry
	Content model.ContentRef
}

type Decision struct {
	Entry   model.ModerationQueueEntry
	Content model.ContentRef
	Action  model.ModerationActionLog
}

type ReconcileResult struct {
	Scanned  int
	Requeued int
	Failed   int
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	registry := deps.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Service{
		tx:          deps.Tx,
		queue:       deps.Queue,
		actions:     deps.Actions,
		memberships: deps.Memberships,
		registry:    registry,
		limiter:     deps.Limiter,
		cache:       deps.Cache,
		notifier:    deps.Notifier,
		logger:      logger,
		pageSize:    pageSize,
		now:         time.Now,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Submit creates a content row through create and queues it in the same transaction.
func (s *Service) Submit(ctx context.Context, actor model.Actor, itemType enums.ItemType, create func(ctx context.Context) (model.ContentRef, error)) (Submission, error) {
	if err := s.ready(); err != nil {
		return Submission{}, err
	}
	if !actor.Authenticated() {
		return Submission{}, ErrUnauthenticated
	}
	if create == nil {
		return Submission{}, fmt.Errorf("submit %s: create callback is nil", itemType)
	}
	if _, err := s.registry.Lookup(itemType); err != nil {
		return Submission{}, err
	}

	member, err := s.membership(ctx, actor)
	if err != nil {
		return Submission{}, err
	}
	if !member.CanSubmit() {
		return Submission{}, ErrNotVerified
	}

	var out Submission
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ref, err := create(ctx)
		if err != nil {
			return fmt.Errorf("create %s: %w", itemType, err)
		}
		if ref.ItemType != itemType || ref.TenantID != actor.TenantID {
			return fmt.Errorf("create %s: content does not match submission", itemType)
		}

		entry, err := s.queue.InsertEntry(ctx, model.ModerationQueueEntry{
			ID:          uuid.New(),
			ItemType:    itemType,
			ItemID:      ref.ID,
			TenantID:    actor.TenantID,
			SubmittedBy: actor.UserID,
			Status:      enums.ModerationStatusPending,
			Source:      enums.QueueSourceSubmission,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return ErrDuplicatePending
			}
			return fmt.Errorf("queue %s: %w", itemType, err)
		}

		out = Submission{Entry: entry, Content: ref}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}

	s.logger.Info("moderation entry queued",
		zap.String("entry_id", out.Entry.ID.String()),
		zap.String("item_type", string(itemType)),
		zap.String("tenant_id", actor.TenantID.String()),
	)
	if s.notifier != nil {
		s.notifier.EntryQueued(ctx, out.Entry, out.Content)
	}

	return out, nil
}

// Assign sets or clears the reviewer of an entry. Concurrent calls are last-write-wins and both are logged.
func (s *Service) Assign(ctx context.Context, actor model.Actor, entryID uuid.UUID, assignee *uuid.UUID) (model.ModerationQueueEntry, error) {
	if err := s.ready(); err != nil {
		return model.ModerationQueueEntry{}, err
	}
	if _, err := s.requireModerator(ctx, actor); err != nil {
		return model.ModerationQueueEntry{}, err
	}

	if assignee != nil {
		target, err := s.memberships.GetMembership(ctx, actor.TenantID, *assignee)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.ModerationQueueEntry{}, ErrInvalidAssignee
			}
			return model.ModerationQueueEntry{}, fmt.Errorf("load assignee: %w", err)
		}
		if !target.CanModerate() {
			return model.ModerationQueueEntry{}, ErrInvalidAssignee
		}
	}

	action := enums.ModerationActionUnassigned
	if assignee != nil {
		action = enums.ModerationActionAssigned
	}

	var updated model.ModerationQueueEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.queue.GetEntry(ctx, actor.TenantID, entryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if entry.Status.Terminal() {
			return ErrAlreadyResolved
		}

		updated, err = s.queue.SetAssignee(ctx, actor.TenantID, entryID, assignee)
		if err != nil {
			return fmt.Errorf("set assignee: %w", err)
		}

		var notes *string
		if assignee != nil {
			value := assignee.String()
			notes = &value
		}
		if _, err := s.actions.AppendAction(ctx, s.newAction(entryID, actor.UserID, action, notes)); err != nil {
			return fmt.Errorf("append %s action: %w", action, err)
		}
		return nil
	})
	if err != nil {
		return model.ModerationQueueEntry{}, err
	}

	if s.notifier != nil {
		s.notifier.EntryAssigned(ctx, updated)
	}
	return updated, nil
}

func (s *Service) Approve(ctx context.Context, actor model.Actor, entryID uuid.UUID, notes string) (Decision, error) {
	return s.decide(ctx, actor, entryID, enums.ModerationStatusApproved, notes)
}

// Reject does not require a reason; callers that need one enforce it themselves.
func (s *Service) Reject(ctx context.Context, actor model.Actor, entryID uuid.UUID, reason string) (Decision, error) {
	return s.decide(ctx, actor, entryID, enums.ModerationStatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, actor model.Actor, entryID uuid.UUID, status enums.ModerationStatus, notes string) (Decision, error) {
	if err := s.ready(); err != nil {
		return Decision{}, err
	}
	if _, err := s.requireModerator(ctx, actor); err != nil {
		return Decision{}, err
	}

	action, ok := enums.ActionForStatus(status)
	if !ok {
		return Decision{}, fmt.Errorf("status %q is not a decision", status)
	}
	notes = strings.TrimSpace(notes)

	var out Decision
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.queue.GetEntry(ctx, actor.TenantID, entryID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		if entry.Status.Terminal() {
			return ErrAlreadyResolved
		}

		store, err := s.registry.Lookup(entry.ItemType)
		if err != nil {
			return err
		}

		resolved, err := s.queue.ResolveEntry(ctx, actor.TenantID, entryID, status, actor.UserID, s.now().UTC())
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return ErrAlreadyResolved
			}
			return fmt.Errorf("resolve entry: %w", err)
		}

		if err := store.SetStatus(ctx, actor.TenantID, entry.ItemID, status); err != nil {
			return fmt.Errorf("set %s status: %w", entry.ItemType, err)
		}
		ref, err := store.Fetch(ctx, actor.TenantID, entry.ItemID)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", entry.ItemType, err)
		}

		logged, err := s.actions.AppendAction(ctx, s.newAction(entryID, actor.UserID, action, optional(notes)))
		if err != nil {
			return fmt.Errorf("append %s action: %w", action, err)
		}

		out = Decision{Entry: resolved, Content: ref, Action: logged}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	s.logger.Info("moderation entry resolved",
		zap.String("entry_id", entryID.String()),
		zap.String("status", string(status)),
		zap.String("moderator_id", actor.UserID.String()),
	)
	s.invalidate(ctx, out.Entry.TenantID, out.Entry.ItemType)
	if s.notifier != nil {
		s.notifier.EntryResolved(ctx, out.Entry, out.Content, notes)
	}

	return out, nil
}

// Report puts existing content back under review and hides it until decided.
func (s *Service) Report(ctx context.Context, actor model.Actor, itemType enums.ItemType, itemID uuid.UUID, reason string) (model.ModerationQueueEntry, error) {
	if err := s.ready(); err != nil {
		return model.ModerationQueueEntry{}, err
	}
	if !actor.Authenticated() {
		return model.ModerationQueueEntry{}, ErrUnauthenticated
	}
	store, err := s.registry.Lookup(itemType)
	if err != nil {
		return model.ModerationQueueEntry{}, err
	}
	if _, err := s.membership(ctx, actor); err != nil {
		return model.ModerationQueueEntry{}, err
	}

	reason = strings.TrimSpace(reason)
	var checker validate.Checker
	if checker.Required("reason", reason) {
		checker.Length("reason", reason, 3, maxReasonLength)
	}
	if err := checker.Err(); err != nil {
		return model.ModerationQueueEntry{}, err
	}

	if s.limiter != nil {
		retryAfter, err := s.limiter.RetryAfterReport(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return model.ModerationQueueEntry{}, fmt.Errorf("report rate state: %w", err)
		}
		if retryAfter > 0 {
			return model.ModerationQueueEntry{}, &RateLimitedError{RetryAfterSec: retryAfter}
		}
	}

	if _, err := store.Fetch(ctx, actor.TenantID, itemID); err != nil {
		return model.ModerationQueueEntry{}, fmt.Errorf("fetch reported %s: %w", itemType, err)
	}
	pending, err := s.queue.HasPending(ctx, itemType, itemID)
	if err != nil {
		return model.ModerationQueueEntry{}, fmt.Errorf("check pending entry: %w", err)
	}
	if pending {
		return model.ModerationQueueEntry{}, ErrDuplicatePending
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowReport(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return model.ModerationQueueEntry{}, fmt.Errorf("report rate limit: %w", err)
		}
		if !allowed {
			return model.ModerationQueueEntry{}, &RateLimitedError{RetryAfterSec: retryAfter}
		}
	}

	var (
		entry model.ModerationQueueEntry
		ref   model.ContentRef
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.queue.InsertEntry(ctx, model.ModerationQueueEntry{
			ID:          uuid.New(),
			ItemType:    itemType,
			ItemID:      itemID,
			TenantID:    actor.TenantID,
			SubmittedBy: actor.UserID,
			Status:      enums.ModerationStatusPending,
			Source:      enums.QueueSourceReport,
			Reason:      &reason,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return ErrDuplicatePending
			}
			return fmt.Errorf("queue report: %w", err)
		}

		if err := store.SetStatus(ctx, actor.TenantID, itemID, enums.ModerationStatusPending); err != nil {
			return fmt.Errorf("hide reported %s: %w", itemType, err)
		}
		ref, err = store.Fetch(ctx, actor.TenantID, itemID)
		if err != nil {
			return fmt.Errorf("fetch reported %s: %w", itemType, err)
		}

		if _, err := s.actions.AppendAction(ctx, s.newAction(entry.ID, actor.UserID, enums.ModerationActionReported, &reason)); err != nil {
			return fmt.Errorf("append reported action: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.ModerationQueueEntry{}, err
	}

	s.logger.Info("content reported",
		zap.String("entry_id", entry.ID.String()),
		zap.String("item_type", string(itemType)),
		zap.String("item_id", itemID.String()),
	)
	s.invalidate(ctx, actor.TenantID, itemType)
	if s.notifier != nil {
		s.notifier.EntryQueued(ctx, entry, ref)
	}

	return entry, nil
}

func (s *Service) ListQueue(ctx context.Context, actor model.Actor, filter model.QueueFilter) ([]model.ModerationQueueEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.requireModerator(ctx, actor); err != nil {
		return nil, err
	}

	filter.TenantID = actor.TenantID
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validate.Errors{{Field: "status", Code: "invalid_option", Message: "must be one of: pending, approved, rejected"}}
	}
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return nil, validate.Errors{{Field: "item_type", Code: "invalid_option", Message: "unknown item type"}}
	}
	if filter.Limit <= 0 {
		filter.Limit = s.pageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	entries, err := s.queue.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return entries, nil
}

func (s *Service) GetEntry(ctx context.Context, actor model.Actor, entryID uuid.UUID) (model.ModerationQueueEntry, error) {
	if err := s.ready(); err != nil {
		return model.ModerationQueueEntry{}, err
	}
	if _, err := s.requireModerator(ctx, actor); err != nil {
		return model.ModerationQueueEntry{}, err
	}

	entry, err := s.queue.GetEntry(ctx, actor.TenantID, entryID)
	if err != nil {
		return model.ModerationQueueEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

func (s *Service) ListActions(ctx context.Context, actor model.Actor, entryID uuid.UUID) ([]model.ModerationActionLog, error) {
	if _, err := s.GetEntry(ctx, actor, entryID); err != nil {
		return nil, err
	}

	actions, err := s.actions.ListActions(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// Reconcile re-queues pending content that lost its queue entry. Safe to run repeatedly.
func (s *Service) Reconcile(ctx context.Context, batchSize int) (ReconcileResult, error) {
	if err := s.ready(); err != nil {
		return ReconcileResult{}, err
	}
	if batchSize <= 0 {
		batchSize = s.pageSize
	}

	result := ReconcileResult{}
	for _, itemType := range s.registry.Types() {
		store, err := s.registry.Lookup(itemType)
		if err != nil {
			return result, err
		}

		orphans, err := store.ListUnqueued(ctx, batchSize)
		if err != nil {
			return result, fmt.Errorf("list unqueued %s: %w", itemType, err)
		}
		result.Scanned += len(orphans)

		for _, ref := range orphans {
			entry, err := s.requeue(ctx, ref)
			if err != nil {
				if errors.Is(err, ErrDuplicatePending) {
					continue
				}
				result.Failed++
				s.logger.Warn("requeue orphaned content failed",
					zap.String("item_type", string(itemType)),
					zap.String("item_id", ref.ID.String()),
					zap.Error(err),
				)
				continue
			}

			result.Requeued++
			if s.notifier != nil {
				s.notifier.EntryQueued(ctx, entry, ref)
			}
		}
	}

	return result, nil
}

func (s *Service) requeue(ctx context.Context, ref model.ContentRef) (model.ModerationQueueEntry, error) {
	var entry model.ModerationQueueEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.queue.InsertEntry(ctx, model.ModerationQueueEntry{
			ID:          uuid.New(),
			ItemType:    ref.ItemType,
			ItemID:      ref.ID,
			TenantID:    ref.TenantID,
			SubmittedBy: ref.OwnerID,
			Status:      enums.ModerationStatusPending,
			Source:      enums.QueueSourceRequeue,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return ErrDuplicatePending
			}
			return err
		}

		_, err = s.actions.AppendAction(ctx, s.newAction(entry.ID, uuid.Nil, enums.ModerationActionRequeued, nil))
		return err
	})
	return entry, err
}

// RequireModerator reports whether actor may review the tenant's queue.
func (s *Service) RequireModerator(ctx context.Context, actor model.Actor) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.requireModerator(ctx, actor)
	return err
}

func (s *Service) requireModerator(ctx context.Context, actor model.Actor) (model.Membership, error) {
	if !actor.Authenticated() {
		return model.Membership{}, ErrUnauthenticated
	}
	member, err := s.membership(ctx, actor)
	if err != nil {
		return model.Membership{}, err
	}
	if !member.CanModerate() {
		return model.Membership{}, ErrForbidden
	}
	return member, nil
}

func (s *Service) membership(ctx context.Context, actor model.Actor) (model.Membership, error) {
	member, err := s.memberships.GetMembership(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Membership{}, ErrForbidden
		}
		return model.Membership{}, fmt.Errorf("load membership: %w", err)
	}
	return member, nil
}

func (s *Service) invalidate(ctx context.Context, tenantID uuid.UUID, itemType enums.ItemType) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, tenantID, itemType.Listing()); err != nil {
		s.logger.Warn("listing cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("listing", itemType.Listing()),
			zap.Error(err),
		)
	}
}

func (s *Service) newAction(entryID, moderatorID uuid.UUID, action enums.ModerationAction, notes *string) model.ModerationActionLog {
	return model.ModerationActionLog{
		ID:           uuid.New(),
		ModerationID: entryID,
		ModeratorID:  moderatorID,
		Action:       action,
		Notes:        notes,
		CreatedAt:    s.now().UTC(),
	}
}

func (s *Service) ready() error {
	if s.tx == nil || s.queue == nil || s.actions == nil || s.memberships == nil {
		return fmt.Errorf("moderation service dependencies are not configured")
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
