package postgres

import (
	"context"
	"fmt"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"

	"github.com/shopspring/decimal"
)

type userRepository struct {
	db querier
}

const userColumns = `id, name, email, phone, password_hash, role, kyc_status, owner_credit, push_token, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.KYCStatus, &u.OwnerCredit, &u.PushToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	ensureID(&u.ID)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.KYCStatus == "" {
		u.KYCStatus = domain.KYCStatusNotVerified
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.KYCStatus, u.OwnerCredit, u.PushToken, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
	}
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFoundOr(err, "user", email)
	}
	return u, nil
}

// Update writes the mutable profile fields. Role and owner credit are not touched.
func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET name=$1, phone=$2, kyc_status=$3, push_token=$4, updated_at=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Phone, u.KYCStatus, u.PushToken, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "user", u.ID)
}

func (r *userRepository) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) AddOwnerCredit(ctx context.Context, userID string, amount decimal.Decimal) error {
	query := `UPDATE users SET owner_credit = owner_credit + $1, updated_at = $2 WHERE id = $3`
	logger.DatabaseCall("UPDATE", "users.owner_credit", "userID", userID, "amount", amount.String())
	res, err := r.db.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	return requireAffected(res, "user", userID)
}

func (r *userRepository) CountByRole(ctx context.Context) (map[domain.UserRole]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.UserRole]int)
	for rows.Next() {
		var role domain.UserRole
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
