package postgres

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

type billRepository struct {
	db querier
}

const billColumns = `id, property_id, tenant_id, owner_id, category, description, amount, due_date, status, payment_id, created_at, paid_at`

func scanBill(row rowScanner) (*domain.Bill, error) {
	b := &domain.Bill{}
	err := row.Scan(&b.ID, &b.PropertyID, &b.TenantID, &b.OwnerID, &b.Category, &b.Description, &b.Amount, &b.DueDate, &b.Status, &b.PaymentID, &b.CreatedAt, &b.PaidAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *billRepository) Create(ctx context.Context, b *domain.Bill) error {
	logger.EnterMethod("billRepository.Create", "propertyID", b.PropertyID, "tenantID", b.TenantID)

	ensureID(&b.ID)
	b.CreatedAt = time.Now().UTC()
	query := `INSERT INTO bills (` + billColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.PropertyID, b.TenantID, b.OwnerID, b.Category, b.Description, b.Amount, b.DueDate, b.Status, b.PaymentID, b.CreatedAt, b.PaidAt)
	if err != nil {
		logger.ExitMethodWithError("billRepository.Create", err, "propertyID", b.PropertyID)
		return err
	}

	logger.ExitMethod("billRepository.Create", "billID", b.ID)
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	b, err := scanBill(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "bill", id)
	}
	return b, nil
}

func (r *billRepository) Update(ctx context.Context, b *domain.Bill) error {
	query := `UPDATE bills SET status=$1, payment_id=$2, paid_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, b.Status, b.PaymentID, b.PaidAt, b.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "bill", b.ID)
}

func (r *billRepository) ListByUser(ctx context.Context, userID string) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE tenant_id = $1 OR owner_id = $1 ORDER BY due_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}
