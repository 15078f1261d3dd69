package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type TutorialRequestRepo struct {
	*ContentRepo
}

func NewTutorialRequestRepo(pool *pgxpool.Pool) *TutorialRequestRepo {
	content, _ := NewContentRepo(pool, enums.ItemTypeTutorialRequest)
	return &TutorialRequestRepo{ContentRepo: content}
}

func (r *TutorialRequestRepo) InsertTutorialRequest(ctx context.Context, req model.TutorialRequest) (model.TutorialRequest, error) {
	if r.pool == nil {
		return model.TutorialRequest{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
INSERT INTO tutorial_requests (id, tenant_id, requester_id, subject, level, description, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, tenant_id, requester_id, subject, level, description, status, created_at
`, req.ID, req.TenantID, req.RequesterID, req.Subject, req.Level, req.Description, req.Status, req.CreatedAt)

	inserted, err := scanTutorialRequest(row)
	if err != nil {
		return model.TutorialRequest{}, mapError("insert tutorial request", err)
	}
	return inserted, nil
}

func (r *TutorialRequestRepo) ListApprovedTutorialRequests(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.TutorialRequest, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT id, tenant_id, requester_id, subject, level, description, status, created_at
FROM tutorial_requests
WHERE tenant_id = $1 AND status = 'approved'
ORDER BY created_at DESC, id DESC
LIMIT $2
`, tenantID, limit)
	if err != nil {
		return nil, mapError("list approved tutorial requests", err)
	}
	defer rows.Close()

	out := make([]model.TutorialRequest, 0, limit)
	for rows.Next() {
		req, err := scanTutorialRequest(rows)
		if err != nil {
			return nil, mapError("scan tutorial request", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate tutorial requests", err)
	}
	return out, nil
}

func scanTutorialRequest(row pgx.Row) (model.TutorialRequest, error) {
	var r model.TutorialRequest
	err := row.Scan(&r.ID, &r.TenantID, &r.RequesterID, &r.Subject, &r.Level, &r.Description, &r.Status, &r.CreatedAt)
	return r, err
}
