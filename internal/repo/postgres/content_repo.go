package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

// contentTable describes how a moderatable table maps onto model.ContentRef.
type contentTable struct {
	itemType    enums.ItemType
	table       string
	ownerColumn string
	titleColumn string
}

var contentTables = map[enums.ItemType]contentTable{
	enums.ItemTypeMarketplaceItem: {enums.ItemTypeMarketplaceItem, "marketplace_items", "seller_id", "title"},
	enums.ItemTypeServiceProfile:  {enums.ItemTypeServiceProfile, "service_profiles", "owner_id", "business_name"},
	enums.ItemTypeProposal:        {enums.ItemTypeProposal, "proposals", "author_id", "title"},
	enums.ItemTypeTutorialRequest: {enums.ItemTypeTutorialRequest, "tutorial_requests", "requester_id", "subject"},
}

// ContentRepo implements the moderation registry contract for one content table.
type ContentRepo struct {
	pool *pgxpool.Pool
	spec contentTable
}

func NewContentRepo(pool *pgxpool.Pool, itemType enums.ItemType) (*ContentRepo, error) {
	spec, ok := contentTables[itemType]
	if !ok {
		return nil, fmt.Errorf("no content table for item type %q", itemType)
	}
	return &ContentRepo{pool: pool, spec: spec}, nil
}

func (r *ContentRepo) selectRef() string {
	return `SELECT id, tenant_id, ` + r.spec.ownerColumn + `, ` + r.spec.titleColumn + `, status, created_at FROM ` + r.spec.table + ` c`
}

func (r *ContentRepo) Fetch(ctx context.Context, tenantID, id uuid.UUID) (model.ContentRef, error) {
	if r.pool == nil {
		return model.ContentRef{}, errNilPool()
	}

	ref := model.ContentRef{ItemType: r.spec.itemType}
	err := conn(ctx, r.pool).QueryRow(ctx, r.selectRef()+` WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&ref.ID, &ref.TenantID, &ref.OwnerID, &ref.Title, &ref.Status, &ref.CreatedAt)
	if err != nil {
		return model.ContentRef{}, mapError("fetch "+r.spec.table, err)
	}
	return ref, nil
}

func (r *ContentRepo) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus) error {
	if r.pool == nil {
		return errNilPool()
	}

	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE `+r.spec.table+` SET status = $3 WHERE id = $1 AND tenant_id = $2`, id, tenantID, status)
	if err != nil {
		return mapError("set "+r.spec.table+" status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set %s status: %w", r.spec.table, model.ErrNotFound)
	}
	return nil
}

func (r *ContentRepo) ListUnqueued(ctx context.Context, limit int) ([]model.ContentRef, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, r.selectRef()+`
WHERE c.status = 'pending'
  AND NOT EXISTS (
	SELECT 1 FROM moderation_queue q
	WHERE q.item_type = $1 AND q.item_id = c.id
  )
ORDER BY c.created_at ASC
LIMIT $2`, r.spec.itemType, limit)
	if err != nil {
		return nil, mapError("list unqueued "+r.spec.table, err)
	}
	defer rows.Close()

	refs := make([]model.ContentRef, 0)
	for rows.Next() {
		ref := model.ContentRef{ItemType: r.spec.itemType}
		if err := rows.Scan(&ref.ID, &ref.TenantID, &ref.OwnerID, &ref.Title, &ref.Status, &ref.CreatedAt); err != nil {
			return nil, mapError("scan "+r.spec.table, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate "+r.spec.table, err)
	}
	return refs, nil
}
