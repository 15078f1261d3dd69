package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

const marketplaceColumns = `id, tenant_id, seller_id, title, description, price_cents, category, condition, image_keys, status, sold_at, created_at`

type MarketplaceRepo struct {
	*ContentRepo
}

func NewMarketplaceRepo(pool *pgxpool.Pool) *MarketplaceRepo {
	content, _ := NewContentRepo(pool, enums.ItemTypeMarketplaceItem)
	return &MarketplaceRepo{ContentRepo: content}
}

func (r *MarketplaceRepo) InsertItem(ctx context.Context, item model.MarketplaceItem) (model.MarketplaceItem, error) {
	if r.pool == nil {
		return model.MarketplaceItem{}, errNilPool()
	}
	if item.ImageKeys == nil {
		item.ImageKeys = []string{}
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
INSERT INTO marketplace_items (
	id, tenant_id, seller_id, title, description, price_cents, category, condition, image_keys, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+marketplaceColumns,
		item.ID, item.TenantID, item.SellerID, item.Title, item.Description, item.PriceCents,
		item.Category, item.Condition, item.ImageKeys, item.Status, item.CreatedAt,
	)

	inserted, err := scanMarketplaceItem(row)
	if err != nil {
		return model.MarketplaceItem{}, mapError("insert marketplace item", err)
	}
	return inserted, nil
}

func (r *MarketplaceRepo) GetItem(ctx context.Context, tenantID, id uuid.UUID) (model.MarketplaceItem, error) {
	if r.pool == nil {
		return model.MarketplaceItem{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+marketplaceColumns+` FROM marketplace_items WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	item, err := scanMarketplaceItem(row)
	if err != nil {
		return model.MarketplaceItem{}, mapError("get marketplace item", err)
	}
	return item, nil
}

func (r *MarketplaceRepo) ListApprovedItems(ctx context.Context, tenantID uuid.UUID, category string, limit int) ([]model.MarketplaceItem, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT `+marketplaceColumns+`
FROM marketplace_items
WHERE tenant_id = $1
  AND status = 'approved'
  AND sold_at IS NULL
  AND ($2::text = '' OR lower(category) = lower($2::text))
ORDER BY created_at DESC, id DESC
LIMIT $3
`, tenantID, category, limit)
	if err != nil {
		return nil, mapError("list approved marketplace items", err)
	}
	defer rows.Close()

	items := make([]model.MarketplaceItem, 0, limit)
	for rows.Next() {
		item, err := scanMarketplaceItem(rows)
		if err != nil {
			return nil, mapError("scan marketplace item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate marketplace items", err)
	}
	return items, nil
}

// MarkItemSold only touches approved unsold items; anything else is a conflict.
func (r *MarketplaceRepo) MarkItemSold(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (model.MarketplaceItem, error) {
	if r.pool == nil {
		return model.MarketplaceItem{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
UPDATE marketplace_items
SET sold_at = $3
WHERE id = $1 AND tenant_id = $2 AND status = 'approved' AND sold_at IS NULL
RETURNING `+marketplaceColumns, id, tenantID, at)

	item, err := scanMarketplaceItem(row)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.MarketplaceItem{}, mapError("mark marketplace item sold", err)
	}

	if _, getErr := r.GetItem(ctx, tenantID, id); getErr != nil {
		return model.MarketplaceItem{}, getErr
	}
	return model.MarketplaceItem{}, fmt.Errorf("mark marketplace item sold: %w", model.ErrConflict)
}

func scanMarketplaceItem(row pgx.Row) (model.MarketplaceItem, error) {
	var item model.MarketplaceItem
	err := row.Scan(
		&item.ID,
		&item.TenantID,
		&item.SellerID,
		&item.Title,
		&item.Description,
		&item.PriceCents,
		&item.Category,
		&item.Condition,
		&item.ImageKeys,
		&item.Status,
		&item.SoldAt,
		&item.CreatedAt,
	)
	return item, err
}
