package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

type ProposalRepo struct {
	*ContentRepo
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	content, _ := NewContentRepo(pool, enums.ItemTypeProposal)
	return &ProposalRepo{ContentRepo: content}
}

func (r *ProposalRepo) InsertProposal(ctx context.Context, p model.Proposal) (model.Proposal, error) {
	if r.pool == nil {
		return model.Proposal{}, errNilPool()
	}

	row := conn(ctx, r.pool).QueryRow(ctx, `
INSERT INTO proposals (id, tenant_id, author_id, title, description, category, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, tenant_id, author_id, title, description, category, status, created_at
`, p.ID, p.TenantID, p.AuthorID, p.Title, p.Description, p.Category, p.Status, p.CreatedAt)

	inserted, err := scanProposal(row)
	if err != nil {
		return model.Proposal{}, mapError("insert proposal", err)
	}
	return inserted, nil
}

func (r *ProposalRepo) ListApprovedProposals(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Proposal, error) {
	if r.pool == nil {
		return nil, errNilPool()
	}

	rows, err := conn(ctx, r.pool).Query(ctx, `
SELECT id, tenant_id, author_id, title, description, category, status, created_at
FROM proposals
WHERE tenant_id = $1 AND status = 'approved'
ORDER BY created_at DESC, id DESC
LIMIT $2
`, tenantID, limit)
	if err != nil {
		return nil, mapError("list approved proposals", err)
	}
	defer rows.Close()

	out := make([]model.Proposal, 0, limit)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, mapError("scan proposal", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate proposals", err)
	}
	return out, nil
}

func scanProposal(row pgx.Row) (model.Proposal, error) {
	var p model.Proposal
	err := row.Scan(&p.ID, &p.TenantID, &p.AuthorID, &p.Title, &p.Description, &p.Category, &p.Status, &p.CreatedAt)
	return p, err
}
