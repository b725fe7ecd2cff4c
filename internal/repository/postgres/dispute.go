package postgres

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"
)

type disputeRepository struct {
	db querier
}

const disputeColumns = `id, property_id, application_id, raised_by, against_user_id, reason, status, resolution, resolved_by, created_at, resolved_at`

func scanDispute(row rowScanner) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	err := row.Scan(&d.ID, &d.PropertyID, &d.ApplicationID, &d.RaisedBy, &d.AgainstUserID, &d.Reason, &d.Status, &d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	ensureID(&d.ID)
	d.CreatedAt = time.Now().UTC()
	query := `INSERT INTO disputes (` + disputeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.PropertyID, d.ApplicationID, d.RaisedBy, d.AgainstUserID, d.Reason, d.Status, d.Resolution, d.ResolvedBy, d.CreatedAt, d.ResolvedAt)
	return err
}

func (r *disputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	d, err := scanDispute(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "dispute", id)
	}
	return d, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *domain.Dispute) error {
	query := `UPDATE disputes SET status=$1, resolution=$2, resolved_by=$3, resolved_at=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, d.Status, d.Resolution, d.ResolvedBy, d.ResolvedAt, d.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "dispute", d.ID)
}

func (r *disputeRepository) List(ctx context.Context, userID string) ([]domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes`
	var args []any
	if userID != "" {
		query += ` WHERE raised_by = $1 OR against_user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}

func (r *disputeRepository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disputes WHERE status = $1`, domain.DisputeStatusOpen).Scan(&n)
	return n, err
}
