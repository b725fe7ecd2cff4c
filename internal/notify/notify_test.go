package notify

import (
	"context"
	"errors"
	"testing"

	"rentnest-backend/internal/domain"

	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Name() string { return "mock" }

func (m *mockChannel) Deliver(ctx context.Context, to Recipient, n domain.Notification) error {
	args := m.Called(ctx, to, n)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rest.Response), args.Error(1)
}

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	tenant := &domain.User{ID: "u-1", Name: "Asha", Email: "asha@example.com", PushToken: "tok"}
	notes := []domain.Notification{
		{UserID: "u-1", Type: domain.NotificationPaymentDue, Message: "Deposit due"},
		{UserID: "u-1", Type: domain.NotificationAgreementComplete, Message: "Signed"},
		{UserID: "u-missing", Type: domain.NotificationRentDue, Message: "Rent due"},
	}

	t.Run("looks up each recipient once and keeps going on failures", func(t *testing.T) {
		users := new(mockUsers)
		ch := new(mockChannel)
		users.On("GetByID", ctx, "u-1").Return(tenant, nil).Once()
		users.On("GetByID", ctx, "u-missing").Return(nil, domain.NotFound("user", "u-missing")).Once()
		ch.On("Deliver", ctx, mock.MatchedBy(func(r Recipient) bool { return r.Email == tenant.Email }), notes[0]).Return(errors.New("smtp down"))
		ch.On("Deliver", ctx, mock.Anything, notes[1]).Return(nil)

		NewDispatcher(users, ch).Dispatch(ctx, notes...)

		users.AssertExpectations(t)
		ch.AssertNumberOfCalls(t, "Deliver", 2)
	})

	t.Run("no channels means no lookups", func(t *testing.T) {
		users := new(mockUsers)
		NewDispatcher(users).Dispatch(ctx, notes...)
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestEmailChannel_Deliver(t *testing.T) {
	ctx := context.Background()
	n := domain.Notification{UserID: "u-1", Type: domain.NotificationPaymentReceived, Message: "Rs 19500 credited"}
	to := Recipient{UserID: "u-1", Name: "Ravi", Email: "ravi@example.com"}

	t.Run("success", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", mock.MatchedBy(func(msg *mail.SGMailV3) bool {
			return msg.Subject == "Payment received" && msg.From.Address == "noreply@rentnest.app"
		})).Return(&rest.Response{StatusCode: 202}, nil)

		err := newEmailChannel(m, "noreply@rentnest.app", "RentNest").Deliver(ctx, to, n)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("error status", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", mock.Anything).Return(&rest.Response{StatusCode: 401, Body: "unauthorized"}, nil)

		err := newEmailChannel(m, "noreply@rentnest.app", "RentNest").Deliver(ctx, to, n)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("no address is skipped", func(t *testing.T) {
		m := new(mockMailer)
		err := newEmailChannel(m, "noreply@rentnest.app", "RentNest").Deliver(ctx, Recipient{UserID: "u-1"}, n)
		assert.NoError(t, err)
		m.AssertNotCalled(t, "Send", mock.Anything)
	})
}

func TestPushChannel_Deliver(t *testing.T) {
	ctx := context.Background()
	n := domain.Notification{
		UserID:     "u-1",
		Type:       domain.NotificationRentDueSoon,
		Message:    "Rent due on 5 Nov",
		RelatedID:  "agr-1",
		Attributes: map[string]string{domain.AttrBillingPeriod: "2026-11"},
	}

	m := new(mockMessenger)
	m.On("Send", ctx, mock.MatchedBy(func(msg *messaging.Message) bool {
		return msg.Token == "device-1" &&
			msg.Data["billing_period"] == "2026-11" &&
			msg.Data["related_id"] == "agr-1" &&
			msg.Notification.Title == "Rent due soon"
	})).Return("msg-1", nil)

	ch := &PushChannel{client: m}
	require.NoError(t, ch.Deliver(ctx, Recipient{UserID: "u-1", PushToken: "device-1"}, n))
	require.NoError(t, ch.Deliver(ctx, Recipient{UserID: "u-2"}, n))
	m.AssertNumberOfCalls(t, "Send", 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "KYC updated", Subject(domain.NotificationKYCUpdated))
	assert.Equal(t, "Signature code", Subject(domain.NotificationSignatureOTP))
	assert.Equal(t, "Move in ready", Subject(domain.NotificationMoveInReady))
}
