package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

const queueColumns = `id, item_type, item_id, tenant_id, submitted_by, assigned_to, status, source, reason, resolved_at, resolved_by, created_at`

type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

func (r *ModerationRepo) HasPending(ctx context.Context, itemType enums.ItemType, itemID uuid.UUID) (bool, error) {
	if r.pool == nil {
		return false, errNilPool()
	}

	var exists bool
	if err := conn(ctx, r.pool).QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM moderation_queue
	WHERE item_type = $1 AND item_id = $2 AND status = 'pending'
)
`, itemType, itemID).Scan(&exists); err != nil {
		return false, mapError("check pending moderation entry", err)
	}

	return exists, nil
}

// InsertEntry relies on moderation_queue_one_pending to reject a second pending entry.
func (r *ModerationRepo) InsertEntry(ctx context.Context, entry model.ModerationQueueEntry) (model.ModerationQueueEntry, error) {
	if r.pool == nil {
		return model.ModerationQueueEntry{}, errNilPool()
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
INSERT INTO moderation_queue (
	id, item_type, item_id, tenant_id, submitted_by, status, source, reason, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+queueColumns,
		entry.ID, entry.ItemType, entry.ItemID, entry.TenantID, entry.SubmittedBy,
		entry.Status, entry.Source, entry.Reason, entry.CreatedAt,
	)

	inserted, err := scanQueueEntry(row)
	if err != nil {
		return model.ModerationQueueEntry{}, mapError("insert moderation entry", err)
	}
	return inserted, nil
}

func (r *ModerationRepo) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (model.ModerationQueueEntry, error) {
	if r.pool == nil {
		return model.ModerationQueueEntry{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
SELECT `+queueColumns+`
FROM moderation_queue
WHERE id = $1 AND tenant_id = $2
`, id, tenantID)

	entry, err := scanQueueEntry(row)
	if err != nil {
		return model.ModerationQueueEntry{}, mapError("get moderation entry", err)
	}
	return entry, nil
}

func (r *ModerationRepo) SetAssignee(ctx context.Context, tenantID, id uuid.UUID, assignee *uuid.UUID) (model.ModerationQueueEntry, error) {
	if r.pool == nil {
		return model.ModerationQueueEntry{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
UPDATE moderation_queue
SET assigned_to = $3
WHERE id = $1 AND tenant_id = $2
RETURNING `+queueColumns,
		id, tenantID, assignee,
	)

	entry, err := scanQueueEntry(row)
	if err != nil {
		return model.ModerationQueueEntry{}, mapError("assign moderation entry", err)
	}
	return entry, nil
}

func (r *ModerationRepo) ResolveEntry(ctx context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus, resolvedBy uuid.UUID, at time.Time) (model.ModerationQueueEntry, error) {
	if r.pool == nil {
		return model.ModerationQueueEntry{}, errNilPool()
	}
	if !status.Terminal() {
		return model.ModerationQueueEntry{}, fmt.Errorf("resolve moderation entry: %q is not terminal", status)
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
UPDATE moderation_queue
SET status = $3, resolved_by = $4, resolved_at = $5
WHERE id = $1 AND tenant_id = $2 AND status = 'pending'
RETURNING `+queueColumns,
		id, tenantID, status, resolvedBy, at,
	)

	entry, err := scanQueueEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ModerationQueueEntry{}, fmt.Errorf("resolve moderation entry: %w", model.ErrConflict)
		}
		return model.ModerationQueueEntry{}, mapError("resolve moderation entry", err)
	}
	return entry, nil
}

func (r *ModerationRepo) ListEntries(ctx context.Context, filter model.QueueFilter) ([]model.ModerationQueueEntry, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	where := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.ItemType != "" {
		args = append(args, filter.ItemType)
		where = append(where, "item_type = $"+strconv.Itoa(len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where = append(where, "assigned_to = $"+strconv.Itoa(len(args)))
	}
	args = append(args, filter.Limit)

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT `+queueColumns+`
FROM moderation_queue
WHERE `+strings.Join(where, " AND ")+`
ORDER BY created_at ASC, id ASC
LIMIT $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, mapError("list moderation entries", err)
	}
	defer rows.Close()

	entries := make([]model.ModerationQueueEntry, 0, filter.Limit)
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, mapError("scan moderation entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate moderation entries", err)
	}

	return entries, nil
}

func (r *ModerationRepo) AppendAction(ctx context.Context, action model.ModerationActionLog) (model.ModerationActionLog, error) {
	if r.pool == nil {
		return model.ModerationActionLog{}, errNilPool()
	}
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}

	if _, err := conn(ctx, r.pool).Exec(ctx, `
INSERT INTO moderation_actions_log (id, moderation_id, moderator_id, action, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, action.ID, action.ModerationID, action.ModeratorID, action.Action, action.Notes, action.CreatedAt); err != nil {
		return model.ModerationActionLog{}, mapError("append moderation action", err)
	}

	return action, nil
}

func (r *ModerationRepo) ListActions(ctx context.Context, moderationID uuid.UUID) ([]model.ModerationActionLog, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT id, moderation_id, moderator_id, action, notes, created_at
FROM moderation_actions_log
WHERE moderation_id = $1
ORDER BY created_at ASC, id ASC
`, moderationID)
	if err != nil {
		return nil, mapError("list moderation actions", err)
	}
	defer rows.Close()

	actions := make([]model.ModerationActionLog, 0)
	for rows.Next() {
		var a model.ModerationActionLog
		if err := rows.Scan(&a.ID, &a.ModerationID, &a.ModeratorID, &a.Action, &a.Notes, &a.CreatedAt); err != nil {
			return nil, mapError("scan moderation action", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate moderation actions", err)
	}

	return actions, nil
}

func scanQueueEntry(row pgx.Row) (model.ModerationQueueEntry, error) {
	var e model.ModerationQueueEntry
	err := row.Scan(
		&e.ID,
		&e.ItemType,
		&e.ItemID,
		&e.TenantID,
		&e.SubmittedBy,
		&e.AssignedTo,
		&e.Status,
		&e.Source,
		&e.Reason,
		&e.ResolvedAt,
		&e.ResolvedBy,
		&e.CreatedAt,
	)
	return e, err
}
