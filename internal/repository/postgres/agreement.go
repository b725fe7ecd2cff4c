package postgres

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
)

type agreementRepository struct {
	db querier
}

const agreementColumns = `id, application_id, property_id, tenant_id, owner_id, rent_amount, deposit_amount, start_date, terms, signed_by_tenant, signed_by_owner, tenant_signed_at, owner_signed_at, created_at`

func scanAgreement(row rowScanner) (*domain.Agreement, error) {
	a := &domain.Agreement{}
	err := row.Scan(&a.ID, &a.ApplicationID, &a.PropertyID, &a.TenantID, &a.OwnerID, &a.RentAmount, &a.DepositAmount, &a.StartDate, &a.Terms, &a.SignedByTenant, &a.SignedByOwner, &a.TenantSignedAt, &a.OwnerSignedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *agreementRepository) Create(ctx context.Context, a *domain.Agreement) error {
	ensureID(&a.ID)
	a.CreatedAt = time.Now().UTC()
	query := `INSERT INTO agreements (` + agreementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.ApplicationID, a.PropertyID, a.TenantID, a.OwnerID, a.RentAmount, a.DepositAmount, a.StartDate, a.Terms, a.SignedByTenant, a.SignedByOwner, a.TenantSignedAt, a.OwnerSignedAt, a.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("agreement for application %s: %w", a.ApplicationID, domain.ErrAlreadyExists)
	}
	return err
}

func (r *agreementRepository) GetByID(ctx context.Context, id string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE id = $1`
	a, err := scanAgreement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "agreement", id)
	}
	return a, nil
}

func (r *agreementRepository) GetByApplication(ctx context.Context, applicationID string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE application_id = $1`
	a, err := scanAgreement(r.db.QueryRowContext(ctx, query, applicationID))
	if err != nil {
		return nil, notFoundOr(err, "agreement for application", applicationID)
	}
	return a, nil
}

func (r *agreementRepository) Update(ctx context.Context, a *domain.Agreement) error {
	query := `UPDATE agreements SET rent_amount=$1, deposit_amount=$2, start_date=$3, terms=$4, signed_by_tenant=$5, signed_by_owner=$6, tenant_signed_at=$7, owner_signed_at=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, a.RentAmount, a.DepositAmount, a.StartDate, a.Terms, a.SignedByTenant, a.SignedByOwner, a.TenantSignedAt, a.OwnerSignedAt, a.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "agreement", a.ID)
}

func (r *agreementRepository) ListByUser(ctx context.Context, userID string) ([]domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE tenant_id = $1 OR owner_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *agreementRepository) ListActive(ctx context.Context) ([]domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE signed_by_tenant AND signed_by_owner ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *agreementRepository) list(ctx context.Context, query string, args ...any) ([]domain.Agreement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []domain.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, *a)
	}
	return agreements, rows.Err()
}
