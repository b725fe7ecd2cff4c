package postgres

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"
)

type activityRepository struct {
	db querier
}

func (r *activityRepository) Create(ctx context.Context, a *domain.ActivityLog) error {
	ensureID(&a.ID)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO activity_logs (id, user_id, action, details, related_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.Action, a.Details, a.RelatedID, a.CreatedAt)
	return err
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	query := `SELECT id, user_id, action, details, related_id, created_at FROM activity_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.ActivityLog
	for rows.Next() {
		var a domain.ActivityLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Details, &a.RelatedID, &a.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
