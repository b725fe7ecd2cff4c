package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentnest-backend/internal/config"
	"rentnest-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRentCycleService struct {
	mock.Mock
}

func (m *MockRentCycleService) Run(ctx context.Context, now time.Time) (service.RentCycleResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(service.RentCycleResult), args.Error(1)
}

func (m *MockRentCycleService) SendOverdueReminders(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func newTestRunner(rc service.RentCycleService, now time.Time) *JobRunner {
	jr := NewJobRunner(&Services{RentCycle: rc}, &config.Config{})
	jr.now = func() time.Time { return now }
	return jr
}

func TestJobRunner(t *testing.T) {
	now := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	t.Run("RunRentCycle passes the clock", func(t *testing.T) {
		rc := new(MockRentCycleService)
		rc.On("Run", mock.Anything, now).Return(service.RentCycleResult{AgreementsScanned: 2, ApplicationsGenerated: 1}, nil).Once()

		newTestRunner(rc, now).RunRentCycle()
		rc.AssertExpectations(t)
	})

	t.Run("errors are logged, not raised", func(t *testing.T) {
		rc := new(MockRentCycleService)
		rc.On("SendOverdueReminders", mock.Anything, now).Return(0, errors.New("db down")).Once()

		assert.NotPanics(t, func() { newTestRunner(rc, now).SendRentOverdueReminders() })
		rc.AssertExpectations(t)
	})

	t.Run("panics are recovered", func(t *testing.T) {
		rc := new(MockRentCycleService)
		rc.On("Run", mock.Anything, now).Run(func(mock.Arguments) { panic("boom") }).Return(service.RentCycleResult{}, nil)

		assert.NotPanics(t, func() { newTestRunner(rc, now).RunRentCycle() })
	})

	t.Run("RunAll runs both jobs", func(t *testing.T) {
		rc := new(MockRentCycleService)
		rc.On("Run", mock.Anything, now).Return(service.RentCycleResult{}, nil).Once()
		rc.On("SendOverdueReminders", mock.Anything, now).Return(1, nil).Once()

		newTestRunner(rc, now).RunAll()
		rc.AssertExpectations(t)
	})
}
