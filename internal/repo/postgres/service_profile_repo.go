package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

const profileColumns = `id, tenant_id, owner_id, business_name, category, description, phone, whatsapp, volunteer, status, created_at`

type ServiceProfileRepo struct {
	*ContentRepo
}

func NewServiceProfileRepo(pool *pgxpool.Pool) *ServiceProfileRepo {
	content, _ := NewContentRepo(pool, enums.ItemTypeServiceProfile)
	return &ServiceProfileRepo{ContentRepo: content}
}

func (r *ServiceProfileRepo) InsertProfile(ctx context.Context, p model.ServiceProfile) (model.ServiceProfile, error) {
	if r.pool == nil {
		return model.ServiceProfile{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
INSERT INTO service_profiles (
	id, tenant_id, owner_id, business_name, category, description, phone, whatsapp, volunteer, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+profileColumns,
		p.ID, p.TenantID, p.OwnerID, p.BusinessName, p.Category, p.Description,
		p.Phone, p.WhatsApp, p.Volunteer, p.Status, p.CreatedAt,
	)

	inserted, err := scanServiceProfile(row)
	if err != nil {
		return model.ServiceProfile{}, mapError("insert service profile", err)
	}
	return inserted, nil
}

func (r *ServiceProfileRepo) ListApprovedProfiles(ctx context.Context, tenantID uuid.UUID, category string, limit int) ([]model.ServiceProfile, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT `+profileColumns+`
FROM service_profiles
WHERE tenant_id = $1
  AND status = 'approved'
  AND ($2::text = '' OR lower(category) = lower($2::text))
ORDER BY business_name ASC, id ASC
LIMIT $3
`, tenantID, category, limit)
	if err != nil {
		return nil, mapError("list approved service profiles", err)
	}
	defer rows.Close()

	profiles := make([]model.ServiceProfile, 0, limit)
	for rows.Next() {
		p, err := scanServiceProfile(rows)
		if err != nil {
			return nil, mapError("scan service profile", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate service profiles", err)
	}
	return profiles, nil
}

func scanServiceProfile(row pgx.Row) (model.ServiceProfile, error) {
	var p model.ServiceProfile
	err := row.Scan(&p.ID, &p.TenantID, &p.OwnerID, &p.BusinessName, &p.Category, &p.Description,
		&p.Phone, &p.WhatsApp, &p.Volunteer, &p.Status, &p.CreatedAt)
	return p, err
}
