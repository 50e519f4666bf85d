package postgres

import (
	"context"
	"fmt"

	"github.com/remp2020/crm-stripe-module/internal/domain"
)

type GatewayRepository struct {
	q Executor
}

func NewGatewayRepository(db *DB) *GatewayRepository {
	return &GatewayRepository{q: db.Pool}
}

// Seed registers the gateways. Existing rows keep their sorting and visibility
// so operators can tune them.
func (r *GatewayRepository) Seed(ctx context.Context, gateways []domain.Gateway) (int, error) {
	query := `
		INSERT INTO payment_gateways (code, name, sorting, visible, is_recurrent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name,
		    is_recurrent = EXCLUDED.is_recurrent,
		    modified_at = NOW()
		RETURNING (xmax = 0)
	`

	created := 0
	for _, g := range gateways {
		var inserted bool
		err := r.q.QueryRow(ctx, query, g.Code, g.Name, g.Priority, g.Visible, g.Recurrent).Scan(&inserted)
		if err != nil {
			return created, fmt.Errorf("failed to seed gateway %s: %w", g.Code, err)
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

func (r *GatewayRepository) FindByCode(ctx context.Context, code string) (*domain.Gateway, error) {
	var g domain.Gateway
	err := r.q.QueryRow(ctx,
		`SELECT code, name, sorting, visible, is_recurrent FROM payment_gateways WHERE code = $1`,
		code,
	).Scan(&g.Code, &g.Name, &g.Priority, &g.Visible, &g.Recurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to find gateway %s: %w", code, err)
	}
	return &g, nil
}
