package service_test

import (
	"context"
	"errors"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) AddOwnerCredit(ctx context.Context, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}
func (m *MockUserRepo) CountByRole(ctx context.Context) (map[domain.UserRole]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.UserRole]int), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(ctx context.Context, notes ...domain.Notification) {
	m.Called(ctx, notes)
}

var errActivityDown = errors.New("activity log unavailable")

// brokenActivityStore fails every activity write inside a transaction.
type brokenActivityStore struct {
	repository.Store
}

func (s brokenActivityStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(brokenActivityStore{Store: tx})
	})
}

func (s brokenActivityStore) Activities() repository.ActivityRepository {
	return brokenActivities{}
}

type brokenActivities struct{}

func (brokenActivities) Create(context.Context, *domain.ActivityLog) error {
	return errActivityDown
}
func (brokenActivities) ListByUser(context.Context, string, int) ([]domain.ActivityLog, error) {
	return nil, errActivityDown
}
