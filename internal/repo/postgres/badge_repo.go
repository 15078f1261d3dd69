package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type BadgeRepo struct {
	pool *pgxpool.Pool
}

func NewBadgeRepo(pool *pgxpool.Pool) *BadgeRepo {
	return &BadgeRepo{pool: pool}
}

func (r *BadgeRepo) HasBadge(ctx context.Context, tenantID, userID uuid.UUID, slug string) (bool, error) {
	if r.pool == nil {
		return false, errNilPool()
	}

	var exists bool
	if err := conn(ctx, r.pool).QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM user_badges WHERE tenant_id = $1 AND user_id = $2 AND badge_slug = $3
)
`, tenantID, userID, slug).Scan(&exists); err != nil {
		return false, mapError("check user badge", err)
	}
	return exists, nil
}

// InsertUserBadge maps the user_badges_tenant_user_slug unique violation to model.ErrConflict.
func (r *BadgeRepo) InsertUserBadge(ctx context.Context, badge model.UserBadge) (model.UserBadge, error) {
	if r.pool == nil {
		return model.UserBadge{}, errNilPool()
	}
	if badge.ID == uuid.Nil {
		badge.ID = uuid.New()
	}

	if _, err := conn(ctx, r.pool).Exec(ctx, `
INSERT INTO user_badges (id, tenant_id, user_id, badge_slug, awarded_at)
VALUES ($1, $2, $3, $4, $5)
`, badge.ID, badge.TenantID, badge.UserID, badge.BadgeSlug, badge.AwardedAt); err != nil {
		return model.UserBadge{}, mapError("insert user badge", err)
	}
	return badge, nil
}

func (r *BadgeRepo) ListUserBadges(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserBadge, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT id, tenant_id, user_id, badge_slug, awarded_at
FROM user_badges
WHERE tenant_id = $1 AND user_id = $2
ORDER BY awarded_at ASC, badge_slug ASC
`, tenantID, userID)
	if err != nil {
		return nil, mapError("list user badges", err)
	}
	defer rows.Close()

	badges := make([]model.UserBadge, 0)
	for rows.Next() {
		var b model.UserBadge
		if err := rows.Scan(&b.ID, &b.TenantID, &b.UserID, &b.BadgeSlug, &b.AwardedAt); err != nil {
			return nil, mapError("scan user badge", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate user badges", err)
	}
	return badges, nil
}

// SyncCatalog mirrors the in-code catalog into the badges table.
func (r *BadgeRepo) SyncCatalog(ctx context.Context, catalog []model.Badge) error {
	if r.pool == nil {
		return errNilPool()
	}

	for _, b := range catalog {
		if _, err := conn(ctx, r.pool).Exec(ctx, `
INSERT INTO badges (slug, name, description, metric, threshold)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (slug) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	metric = EXCLUDED.metric,
	threshold = EXCLUDED.threshold
`, b.Slug, b.Name, b.Description, string(b.Metric), b.Threshold); err != nil {
			return mapError("sync badge "+b.Slug, err)
		}
	}
	return nil
}

// ActivityCounters counts the rows every badge metric is computed from.
func (r *BadgeRepo) ActivityCounters(ctx context.Context, tenantID, userID uuid.UUID) (model.ActivityCounters, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	var posts, rsvps, sold, volunteer, donations int
	err := conn(ctx, r.pool).QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM forum_posts WHERE tenant_id = $1 AND author_id = $2),
	(SELECT COUNT(*) FROM event_rsvps WHERE tenant_id = $1 AND user_id = $2),
	(SELECT COUNT(*) FROM marketplace_items WHERE tenant_id = $1 AND seller_id = $2 AND sold_at IS NOT NULL),
	(SELECT COUNT(*) FROM service_profiles WHERE tenant_id = $1 AND owner_id = $2 AND volunteer AND status = 'approved'),
	(SELECT COUNT(*) FROM donations WHERE tenant_id = $1 AND donor_id = $2)
`, tenantID, userID).Scan(&posts, &rsvps, &sold, &volunteer, &donations)
	if err != nil {
		return nil, mapError("count activity", err)
	}

	return model.ActivityCounters{
		model.MetricPosts:             posts,
		model.MetricEventRSVPs:        rsvps,
		model.MetricSoldItems:         sold,
		model.MetricVolunteerProfiles: volunteer,
		model.MetricDonations:         donations,
	}, nil
}
