package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB // nil when the store is bound to a transaction

	users         repository.UserRepository
	properties    repository.PropertyRepository
	viewings      repository.ViewingRepository
	applications  repository.ApplicationRepository
	agreements    repository.AgreementRepository
	payments      repository.PaymentRepository
	notifications repository.NotificationRepository
	activities    repository.ActivityRepository
	verifications repository.VerificationRepository
	bills         repository.BillRepository
	disputes      repository.DisputeRepository
}

func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q querier) *Store {
	return &Store{
		users:         &userRepository{db: q},
		properties:    &propertyRepository{db: q},
		viewings:      &viewingRepository{db: q},
		applications:  &applicationRepository{db: q},
		agreements:    &agreementRepository{db: q},
		payments:      &paymentRepository{db: q},
		notifications: &notificationRepository{db: q},
		activities:    &activityRepository{db: q},
		verifications: &verificationRepository{db: q},
		bills:         &billRepository{db: q},
		disputes:      &disputeRepository{db: q},
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Properties() repository.PropertyRepository        { return s.properties }
func (s *Store) Viewings() repository.ViewingRepository           { return s.viewings }
func (s *Store) Applications() repository.ApplicationRepository   { return s.applications }
func (s *Store) Agreements() repository.AgreementRepository       { return s.agreements }
func (s *Store) Payments() repository.PaymentRepository           { return s.payments }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }
func (s *Store) Activities() repository.ActivityRepository        { return s.activities }
func (s *Store) Verifications() repository.VerificationRepository { return s.verifications }
func (s *Store) Bills() repository.BillRepository                 { return s.bills }
func (s *Store) Disputes() repository.DisputeRepository           { return s.disputes }

// WithinTx runs fn in a database transaction. Nested calls reuse the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	logger.DatabaseCall("BEGIN", "transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BEGIN", 0, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.DatabaseResult("COMMIT", 0, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
