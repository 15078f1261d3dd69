package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

func (r *MembershipRepo) GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (model.Membership, error) {
	if r.pool == nil {
		return model.Membership{}, errNilPool()
	}

	var (
		m    model.Membership
		role string
	)
	err := conn(ctx, r.pool).QueryRow(ctx, `
SELECT tenant_id, user_id, role, is_moderator, verified, email, display_name
FROM memberships
WHERE tenant_id = $1 AND user_id = $2
`, tenantID, userID).Scan(&m.TenantID, &m.UserID, &role, &m.IsModerator, &m.Verified, &m.Email, &m.DisplayName)
	if err != nil {
		return model.Membership{}, mapError("get membership", err)
	}
	m.Role = enums.ParseRole(role)

	return m, nil
}

// ListVerifiedMembers pages through verified members of every tenant in key order.
func (r *MembershipRepo) ListVerifiedMembers(ctx context.Context, after model.MemberCursor, limit int) ([]model.Membership, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT tenant_id, user_id, role, is_moderator, verified, email, display_name
FROM memberships
WHERE verified = TRUE AND (tenant_id, user_id) > ($1, $2)
ORDER BY tenant_id, user_id
LIMIT $3
`, after.TenantID, after.UserID, limit)
	if err != nil {
		return nil, mapError("list verified members", err)
	}
	defer rows.Close()

	members := make([]model.Membership, 0, limit)
	for rows.Next() {
		var (
			m    model.Membership
			role string
		)
		if err := rows.Scan(&m.TenantID, &m.UserID, &role, &m.IsModerator, &m.Verified, &m.Email, &m.DisplayName); err != nil {
			return nil, mapError("scan membership", err)
		}
		m.Role = enums.ParseRole(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate memberships", err)
	}

	return members, nil
}

// Upsert is used by portalctl to seed members.
func (r *MembershipRepo) Upsert(ctx context.Context, m model.Membership) error {
	if r.pool == nil {
		return errNilPool()
	}

	if _, err := conn(ctx, r.pool).Exec(ctx, `
INSERT INTO memberships (tenant_id, user_id, role, is_moderator, verified, email, display_name)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tenant_id, user_id) DO UPDATE SET
	role = EXCLUDED.role,
	is_moderator = EXCLUDED.is_moderator,
	verified = EXCLUDED.verified,
	email = EXCLUDED.email,
	display_name = EXCLUDED.display_name
`, m.TenantID, m.UserID, string(m.Role), m.IsModerator, m.Verified, m.Email, m.DisplayName); err != nil {
		return mapError("upsert membership", err)
	}
	return nil
}
