package postgres

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"
)

type verificationRepository struct {
	db querier
}

const verificationColumns = `id, user_id, document_type, document_number, document_key, status, reviewer_id, review_notes, submitted_at, reviewed_at`

func scanVerification(row rowScanner) (*domain.Verification, error) {
	v := &domain.Verification{}
	err := row.Scan(&v.ID, &v.UserID, &v.DocumentType, &v.DocumentNumber, &v.DocumentKey, &v.Status, &v.ReviewerID, &v.ReviewNotes, &v.SubmittedAt, &v.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *verificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	ensureID(&v.ID)
	v.SubmittedAt = time.Now().UTC()
	query := `INSERT INTO verifications (` + verificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, v.ID, v.UserID, v.DocumentType, v.DocumentNumber, v.DocumentKey, v.Status, v.ReviewerID, v.ReviewNotes, v.SubmittedAt, v.ReviewedAt)
	return err
}

func (r *verificationRepository) GetByID(ctx context.Context, id string) (*domain.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1`
	v, err := scanVerification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "verification", id)
	}
	return v, nil
}

func (r *verificationRepository) Update(ctx context.Context, v *domain.Verification) error {
	query := `UPDATE verifications SET status=$1, reviewer_id=$2, review_notes=$3, reviewed_at=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, v.Status, v.ReviewerID, v.ReviewNotes, v.ReviewedAt, v.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "verification", v.ID)
}

func (r *verificationRepository) ListByStatus(ctx context.Context, status domain.KYCStatus) ([]domain.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE status = $1 ORDER BY submitted_at`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
