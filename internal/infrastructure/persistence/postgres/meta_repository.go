package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

// MetaRepository stores payment_meta and user_meta rows. Rows are appended;
// reads return the most recent value for a key.
type MetaRepository struct {
	q Executor
}

var (
	_ application.PaymentMetaStore = (*MetaRepository)(nil)
	_ application.UserMetaStore    = (*MetaRepository)(nil)
)

func NewMetaRepository(db *DB) *MetaRepository {
	return &MetaRepository{q: db.Pool}
}

func (r *MetaRepository) GetPaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey) (string, bool, error) {
	return r.get(ctx, "payment_meta", "payment_id", paymentID, key)
}

func (r *MetaRepository) AddPaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey, value string) error {
	return r.add(ctx, "payment_meta", "payment_id", paymentID, key, value)
}

func (r *MetaRepository) RemovePaymentMeta(ctx context.Context, paymentID int64, key domain.MetaKey) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM payment_meta WHERE payment_id = $1 AND key = $2`,
		paymentID, string(key),
	)
	if err != nil {
		return fmt.Errorf("failed to remove payment meta %s: %w", key, err)
	}
	return nil
}

func (r *MetaRepository) GetUserMeta(ctx context.Context, userID int64, key domain.MetaKey) (string, bool, error) {
	return r.get(ctx, "user_meta", "user_id", userID, key)
}

func (r *MetaRepository) AddUserMeta(ctx context.Context, userID int64, key domain.MetaKey, value string) error {
	return r.add(ctx, "user_meta", "user_id", userID, key, value)
}

// table and owner are package constants, never caller input
func (r *MetaRepository) get(ctx context.Context, table, owner string, ownerID int64, key domain.MetaKey) (string, bool, error) {
	query := fmt.Sprintf(
		`SELECT value FROM %s WHERE %s = $1 AND key = $2 ORDER BY id DESC LIMIT 1`,
		table, owner,
	)

	var value string
	err := r.q.QueryRow(ctx, query, ownerID, string(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s %s: %w", table, key, err)
	}
	return value, true, nil
}

func (r *MetaRepository) add(ctx context.Context, table, owner string, ownerID int64, key domain.MetaKey, value string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, key, value) VALUES ($1, $2, $3)`, table, owner)

	if _, err := r.q.Exec(ctx, query, ownerID, string(key), value); err != nil {
		return fmt.Errorf("failed to add %s %s: %w", table, key, err)
	}
	return nil
}
