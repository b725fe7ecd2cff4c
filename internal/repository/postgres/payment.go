package postgres

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	db querier
}

const paymentColumns = `id, user_id, property_id, application_id, viewing_id, bill_id, related_payment_id, type, amount, status, reference, payment_date`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(&p.ID, &p.UserID, &p.PropertyID, &p.ApplicationID, &p.ViewingID, &p.BillID, &p.RelatedPaymentID, &p.Type, &p.Amount, &p.Status, &p.Reference, &p.PaymentDate)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	ensureID(&p.ID)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	logger.DatabaseCall("INSERT", "payments", "type", p.Type, "amount", p.Amount.String())
	_, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.PropertyID, p.ApplicationID, p.ViewingID, p.BillID, p.RelatedPaymentID, p.Type, p.Amount, p.Status, p.Reference, p.PaymentDate)
	logger.DatabaseResult("INSERT", 1, err, "paymentID", p.ID)
	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "payment", id)
	}
	return p, nil
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, id string) error {
	query := `UPDATE payments SET status=$1 WHERE id=$2 AND status=$3`
	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusRefunded, id, domain.PaymentStatusPaid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.TransitionError{Entity: "payment", From: string(p.Status), Event: "refund"}
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY payment_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// SumByType totals Paid payments of one type across the platform.
func (r *paymentRepository) SumByType(ctx context.Context, paymentType domain.PaymentType) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE type = $1 AND status = $2`
	err := r.db.QueryRowContext(ctx, query, paymentType, domain.PaymentStatusPaid).Scan(&total)
	return total, err
}
