package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	"github.com/lib/pq"
)

type applicationRepository struct {
	db querier
}

const applicationColumns = `id, property_id, renter_id, owner_id, kind, source_viewing_id, agreement_id, billing_year, billing_month, move_in_date, status, amount, due_date, offline_transaction_id, offline_submitted_at, offline_acknowledged, offline_acknowledged_at, created_at, updated_at`

const insertApplication = `INSERT INTO applications (` + applicationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

func scanApplication(row rowScanner) (*domain.Application, error) {
	a := &domain.Application{}
	var (
		year, month sql.NullInt32
		txID        sql.NullString
		submittedAt sql.NullTime
		ack         sql.NullBool
		ackAt       *time.Time
	)
	err := row.Scan(&a.ID, &a.PropertyID, &a.RenterID, &a.OwnerID, &a.Kind, &a.SourceViewingID, &a.AgreementID,
		&year, &month, &a.MoveInDate, &a.Status, &a.Amount, &a.DueDate,
		&txID, &submittedAt, &ack, &ackAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if year.Valid && month.Valid {
		a.BillingPeriod = &domain.BillingPeriod{Year: int(year.Int32), Month: int(month.Int32)}
	}
	if txID.Valid {
		a.OfflinePayment = &domain.OfflinePaymentDetails{
			TransactionID:  txID.String,
			SubmittedAt:    submittedAt.Time,
			Acknowledged:   ack.Bool,
			AcknowledgedAt: ackAt,
		}
	}
	return a, nil
}

// billingArgs returns nullable year/month columns.
func billingArgs(a *domain.Application) (any, any) {
	if a.BillingPeriod == nil {
		return nil, nil
	}
	return a.BillingPeriod.Year, a.BillingPeriod.Month
}

// offlineArgs returns the nullable offline payment columns.
func offlineArgs(a *domain.Application) (any, any, bool, any) {
	if a.OfflinePayment == nil {
		return nil, nil, false, nil
	}
	o := a.OfflinePayment
	return o.TransactionID, o.SubmittedAt, o.Acknowledged, o.AcknowledgedAt
}

func (r *applicationRepository) insertArgs(a *domain.Application) []any {
	year, month := billingArgs(a)
	txID, submittedAt, ack, ackAt := offlineArgs(a)
	return []any{a.ID, a.PropertyID, a.RenterID, a.OwnerID, a.Kind, a.SourceViewingID, a.AgreementID,
		year, month, a.MoveInDate, a.Status, a.Amount, a.DueDate,
		txID, submittedAt, ack, ackAt, a.CreatedAt, a.UpdatedAt}
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	ensureID(&a.ID)
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	logger.DatabaseCall("INSERT", "applications", "applicationID", a.ID, "kind", a.Kind)
	_, err := r.db.ExecContext(ctx, insertApplication, r.insertArgs(a)...)
	if isUniqueViolation(err) {
		return fmt.Errorf("application %s: %w", a.ID, domain.ErrAlreadyExists)
	}
	logger.DatabaseResult("INSERT", 1, err, "applicationID", a.ID)
	return err
}

func (r *applicationRepository) CreateRentCycle(ctx context.Context, a *domain.Application) (bool, error) {
	ensureID(&a.ID)
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	query := insertApplication + ` ON CONFLICT (agreement_id, billing_year, billing_month) DO NOTHING`
	logger.DatabaseCall("INSERT", "applications", "agreementID", a.AgreementID, "period", a.BillingPeriod)
	res, err := r.db.ExecContext(ctx, query, r.insertArgs(a)...)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "application", id)
	}
	return a, nil
}

func (r *applicationRepository) GetBySourceViewing(ctx context.Context, viewingID string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE source_viewing_id = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, viewingID))
	if err != nil {
		return nil, notFoundOr(err, "application for viewing", viewingID)
	}
	return a, nil
}

func (r *applicationRepository) Update(ctx context.Context, a *domain.Application) error {
	a.UpdatedAt = time.Now().UTC()
	txID, submittedAt, ack, ackAt := offlineArgs(a)
	query := `UPDATE applications SET status=$1, amount=$2, due_date=$3, agreement_id=$4, offline_transaction_id=$5, offline_submitted_at=$6, offline_acknowledged=$7, offline_acknowledged_at=$8, updated_at=$9 WHERE id=$10`

	logger.DatabaseCall("UPDATE", "applications", "applicationID", a.ID, "status", a.Status)
	res, err := r.db.ExecContext(ctx, query, a.Status, a.Amount, a.DueDate, a.AgreementID, txID, submittedAt, ack, ackAt, a.UpdatedAt, a.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	return requireAffected(res, "application", a.ID)
}

func (r *applicationRepository) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE 1=1`
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		query += fmt.Sprintf(" AND (renter_id = $%d OR owner_id = $%d)", len(args), len(args))
	}
	if f.PropertyID != "" {
		args = append(args, f.PropertyID)
		query += fmt.Sprintf(" AND property_id = $%d", len(args))
	}
	if f.RenterID != "" {
		args = append(args, f.RenterID)
		query += fmt.Sprintf(" AND renter_id = $%d", len(args))
	}
	if f.AgreementID != "" {
		args = append(args, f.AgreementID)
		query += fmt.Sprintf(" AND agreement_id = $%d", len(args))
	}
	if f.Period != nil {
		args = append(args, f.Period.Year, f.Period.Month)
		query += fmt.Sprintf(" AND billing_year = $%d AND billing_month = $%d", len(args)-1, len(args))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int)
	for rows.Next() {
		var s domain.ApplicationStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
