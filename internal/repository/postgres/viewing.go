package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
)

type viewingRepository struct {
	db querier
}

const viewingColumns = `id, property_id, tenant_id, owner_id, advance_amount, advance_payment_id, status, scheduled_at, requested_at, updated_at, verification_data`

func scanViewing(row rowScanner) (*domain.Viewing, error) {
	v := &domain.Viewing{}
	var snapshot []byte
	err := row.Scan(&v.ID, &v.PropertyID, &v.TenantID, &v.OwnerID, &v.AdvanceAmount, &v.AdvancePaymentID, &v.Status, &v.ScheduledAt, &v.RequestedAt, &v.UpdatedAt, &snapshot)
	if err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &v.Verification); err != nil {
			return nil, fmt.Errorf("failed to decode verification data: %w", err)
		}
	}
	return v, nil
}

func (r *viewingRepository) Create(ctx context.Context, v *domain.Viewing) error {
	ensureID(&v.ID)
	now := time.Now().UTC()
	v.RequestedAt, v.UpdatedAt = now, now

	snapshot, err := json.Marshal(v.Verification)
	if err != nil {
		return err
	}
	query := `INSERT INTO viewings (` + viewingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query, v.ID, v.PropertyID, v.TenantID, v.OwnerID, v.AdvanceAmount, v.AdvancePaymentID, v.Status, v.ScheduledAt, v.RequestedAt, v.UpdatedAt, snapshot)
	return err
}

func (r *viewingRepository) GetByID(ctx context.Context, id string) (*domain.Viewing, error) {
	query := `SELECT ` + viewingColumns + ` FROM viewings WHERE id = $1`
	v, err := scanViewing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "viewing", id)
	}
	return v, nil
}

// Update writes status and the advance payment link. The verification snapshot is immutable.
func (r *viewingRepository) Update(ctx context.Context, v *domain.Viewing) error {
	v.UpdatedAt = time.Now().UTC()
	query := `UPDATE viewings SET status=$1, advance_payment_id=$2, updated_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, v.Status, v.AdvancePaymentID, v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "viewing", v.ID)
}

func (r *viewingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	query := `SELECT ` + viewingColumns + ` FROM viewings WHERE tenant_id = $1 OR owner_id = $1 ORDER BY requested_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var viewings []domain.Viewing
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, err
		}
		viewings = append(viewings, *v)
	}
	return viewings, rows.Err()
}
