package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/remp2020/crm-stripe-module/internal/application"
	"github.com/remp2020/crm-stripe-module/internal/domain"
)

var ErrConcurrentUpdate = errors.New("payment status changed concurrently")

const paymentColumns = `
	p.id, p.variable_symbol, p.user_id, u.email, p.payment_gateway_code,
	p.amount::text, p.currency, p.status, p.subscription_type_id, p.subscription_type_length,
	p.created_at, p.paid_at`

type PaymentRepository struct {
	q  Executor
	tc *TransactionCoordinator
}

var _ application.PaymentStore = (*PaymentRepository)(nil)

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{
		q:  db.Pool,
		tc: NewTransactionCoordinator(db),
	}
}

// EnsureUser returns the id of the user with the given email, creating the row when missing.
func (r *PaymentRepository) EnsureUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email) VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`
	if err := r.q.QueryRow(ctx, query, user.Email).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// Create inserts the payment with its items and sets payment.ID.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if r.tc != nil {
		return r.tc.WithTransaction(ctx, func(ctx context.Context, payments *PaymentRepository, _ *MetaRepository) error {
			return payments.Create(ctx, payment)
		})
	}

	query := `
		INSERT INTO payments (
			variable_symbol, user_id, payment_gateway_code, amount, currency, status,
			subscription_type_id, subscription_type_length, created_at, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	p := toDBModel(payment)
	err := r.q.QueryRow(ctx, query,
		p.VariableSymbol,
		p.UserID,
		p.GatewayCode,
		p.Amount,
		p.Currency,
		p.Status,
		p.SubscriptionTypeID,
		p.SubscriptionTypeLength,
		p.CreatedAt,
		p.PaidAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	for _, item := range payment.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO payment_items (payment_id, name, amount, count) VALUES ($1, $2, $3, $4)`,
			payment.ID, item.Name, item.Amount.StringFixed(2), item.Count,
		)
		if err != nil {
			return fmt.Errorf("failed to create payment item: %w", err)
		}
	}

	return nil
}

// FindByVariableSymbol loads the payment with its user email and items.
func (r *PaymentRepository) FindByVariableSymbol(ctx context.Context, variableSymbol string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments p
		JOIN users u ON u.id = p.user_id
		WHERE p.variable_symbol = $1
	`

	m, err := scanPayment(r.q.QueryRow(ctx, query, variableSymbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(variableSymbol)
		}
		return nil, err
	}

	items, err := r.findItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return toDomainModel(*m, items)
}

// FindFormWithIntent returns payments still in form that were handed to the
// processor at least minAge ago, oldest first. Items are not loaded.
func (r *PaymentRepository) FindFormWithIntent(ctx context.Context, minAge time.Duration, limit int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments p
		JOIN users u ON u.id = p.user_id
		WHERE p.status = 'form'
		  AND p.created_at < $1
		  AND EXISTS (
			SELECT 1 FROM payment_meta m
			WHERE m.payment_id = p.id
			  AND m.key IN ($2, $3)
		  )
		ORDER BY p.created_at ASC
		LIMIT $4
	`

	rows, err := r.q.Query(ctx, query,
		time.Now().Add(-minAge),
		string(domain.MetaPaymentIntentID),
		string(domain.MetaCheckoutSessionID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query form payments with intent: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		m, err := scanPayment(row)
		if err != nil {
			return nil, err
		}
		return toDomainModel(*m, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("scan form payments with intent: %w", err)
	}

	return results, nil
}

// UpdateStatus applies the transition and, when notify is set, queues a row for
// the payments collaborator in the same transaction. The in-memory payment is
// only changed after commit.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment, status domain.PaymentStatus, notify bool) error {
	next := *payment
	if err := next.TransitionTo(status); err != nil {
		return err
	}

	apply := func(ctx context.Context, payments *PaymentRepository) error {
		if err := payments.updateStatus(ctx, &next, payment.Status); err != nil {
			return err
		}
		if notify {
			return payments.enqueueNotification(ctx, &next)
		}
		return nil
	}

	var err error
	if r.tc != nil {
		err = r.tc.WithTransaction(ctx, func(ctx context.Context, payments *PaymentRepository, _ *MetaRepository) error {
			return apply(ctx, payments)
		})
	} else {
		err = apply(ctx, r)
	}
	if err != nil {
		return err
	}

	*payment = next
	return nil
}

func (r *PaymentRepository) updateStatus(ctx context.Context, p *domain.Payment, from domain.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1, paid_at = $2, modified_at = NOW()
		WHERE id = $3 AND status = $4
	`

	results, err := r.q.Exec(ctx, query, string(p.Status), p.PaidAt, p.ID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if results.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", p.VariableSymbol, ErrConcurrentUpdate)
	}

	return nil
}

func (r *PaymentRepository) enqueueNotification(ctx context.Context, p *domain.Payment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO payment_notifications (payment_id, status) VALUES ($1, $2)`,
		p.ID, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue payment notification: %w", err)
	}
	return nil
}

func (r *PaymentRepository) findItems(ctx context.Context, paymentID int64) ([]PaymentItemModel, error) {
	rows, err := r.q.Query(ctx,
		`SELECT name, amount::text, count FROM payment_items WHERE payment_id = $1 ORDER BY id`,
		paymentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query payment items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PaymentItemModel, error) {
		var m PaymentItemModel
		err := row.Scan(&m.Name, &m.Amount, &m.Count)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan payment items: %w", err)
	}
	return items, nil
}

func scanPayment(row pgx.Row) (*PaymentModel, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.VariableSymbol, &m.UserID, &m.UserEmail, &m.GatewayCode,
		&m.Amount, &m.Currency, &m.Status, &m.SubscriptionTypeID, &m.SubscriptionTypeLength,
		&m.CreatedAt, &m.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &m, nil
}
