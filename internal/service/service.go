package service

import (
	"context"
	"time"

	"rentnest-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	SeedAdmin(ctx context.Context, email, password, name string) (*domain.User, bool, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error)
	SubmitKYC(ctx context.Context, userID, documentType, documentNumber, documentKey string) (*domain.Verification, error)
	ListActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)
}

type PropertyService interface {
	CreateProperty(ctx context.Context, ownerID string, p *domain.Property) (*domain.Property, error)
	UpdateProperty(ctx context.Context, ownerID string, p *domain.Property) (*domain.Property, error)
	GetProperty(ctx context.Context, propertyID string) (*domain.Property, error)
	SearchProperties(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, int, error)
	ListMyProperties(ctx context.Context, ownerID string) ([]domain.Property, error)
	SetAvailability(ctx context.Context, ownerID, propertyID string, availability domain.Availability) (*domain.Property, error)
	GenerateDescription(ctx context.Context, ownerID, propertyID string) (string, error)
}

type ViewingService interface {
	RequestViewing(ctx context.Context, tenantID, propertyID string, scheduledAt time.Time, snapshot domain.VerificationSnapshot) (*domain.Viewing, error)
	UpdateViewingStatus(ctx context.Context, ownerID, viewingID string, status domain.ViewingStatus) (*domain.Viewing, error)
	CancelViewing(ctx context.Context, tenantID, viewingID string) (*domain.Viewing, error)
	RejectAfterViewing(ctx context.Context, tenantID, viewingID string) (*domain.Viewing, error)
	GetViewing(ctx context.Context, userID, viewingID string) (*domain.Viewing, error)
	ListViewings(ctx context.Context, userID string) ([]domain.Viewing, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, renterID, propertyID string, moveInDate *time.Time) (*domain.Application, error)
	ConfirmRent(ctx context.Context, tenantID, viewingID string) (*domain.Application, error)
	ApproveApplication(ctx context.Context, ownerID, applicationID string) (*domain.Application, error)
	RejectApplication(ctx context.Context, ownerID, applicationID, reason string) (*domain.Application, error)
	UpdateApplicationStatus(ctx context.Context, ownerID, applicationID string, status domain.ApplicationStatus) (*domain.Application, error)
	FinalizeAgreement(ctx context.Context, ownerID, applicationID string, terms domain.AgreementTerms) (*domain.Application, *domain.Agreement, error)
	ConfirmKeyHandover(ctx context.Context, ownerID, applicationID string) (*domain.Application, error)
	GetApplication(ctx context.Context, userID, applicationID string) (*domain.Application, error)
	ListApplications(ctx context.Context, userID string) ([]domain.Application, error)
}

type AgreementService interface {
	SignAgreement(ctx context.Context, userID, agreementID string) (*domain.Agreement, error)
	InitiateSignature(ctx context.Context, userID, agreementID string) (time.Time, error) // returns code expiry
	VerifyOtpAndSign(ctx context.Context, userID, agreementID, code string) (*domain.Agreement, error)
	GetAgreement(ctx context.Context, userID, agreementID string) (*domain.Agreement, error)
	ListAgreements(ctx context.Context, userID string) ([]domain.Agreement, error)
}

type PaymentService interface {
	PayPlatformFee(ctx context.Context, tenantID, applicationID, reference string) (*domain.Application, error)
	SelectPaymentMethod(ctx context.Context, tenantID, applicationID string, method domain.PaymentMethod) (*domain.CheckoutIntent, error)
	RentPaymentSuccess(ctx context.Context, tenantID, applicationID, reference string) (*domain.Application, error)
	RentPaymentFailure(ctx context.Context, tenantID, applicationID, reason string) (*domain.Application, error)
	SubmitOfflinePayment(ctx context.Context, tenantID, applicationID, upiTransactionID string) (*domain.Application, error)
	AcknowledgeOfflinePayment(ctx context.Context, ownerID, applicationID string) (*domain.Application, error)
}

type RentCycleService interface {
	Run(ctx context.Context, now time.Time) (RentCycleResult, error)
	SendOverdueReminders(ctx context.Context, now time.Time) (int, error)
}

type LedgerService interface {
	ListPayments(ctx context.Context, userID string) ([]domain.Payment, error)
	ListNotifications(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, int, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	PaymentSummary(ctx context.Context, userID string) (*domain.PaymentSummary, error)
}

type BillService interface {
	IssueBill(ctx context.Context, ownerID string, in BillInput) (*domain.Bill, error)
	PayBill(ctx context.Context, tenantID, billID, reference string) (*domain.Bill, error)
	ListBills(ctx context.Context, userID string) ([]domain.Bill, error)
}

type DisputeService interface {
	OpenDispute(ctx context.Context, userID, propertyID string, applicationID *string, reason string) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, adminID, disputeID, resolution string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, userID string) ([]domain.Dispute, error)
}

type AdminService interface {
	ReviewKYC(ctx context.Context, adminID, verificationID string, approve bool, notes string) (*domain.Verification, error)
	ListPendingVerifications(ctx context.Context, adminID string) ([]domain.Verification, error)
	ListUsers(ctx context.Context, adminID string, role domain.UserRole) ([]domain.User, error)
	PlatformStats(ctx context.Context, adminID string) (*domain.PlatformStats, error)
	SetPropertyAvailability(ctx context.Context, adminID, propertyID string, availability domain.Availability) (*domain.Property, error)
}

// DescriptionGenerator writes listing copy for a property.
type DescriptionGenerator interface {
	GenerateDescription(ctx context.Context, p *domain.Property) (string, error)
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.UserRole
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProfileUpdate carries optional profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	PushToken *string
}

type BillInput struct {
	PropertyID  string
	TenantID    string
	Category    domain.BillCategory
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
}

type RentCycleResult struct {
	AgreementsScanned     int `json:"agreements_scanned"`
	RemindersSent         int `json:"reminders_sent"`
	ApplicationsGenerated int `json:"applications_generated"`
	Skipped               int `json:"skipped"`
}
