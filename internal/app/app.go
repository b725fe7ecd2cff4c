// Package app builds the stores, delivery channels and services shared by
// the server and cronjob binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentnest-backend/internal/config"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/notify"
	"rentnest-backend/internal/repository"
	"rentnest-backend/internal/repository/memory"
	"rentnest-backend/internal/repository/postgres"
	"rentnest-backend/internal/security"
	"rentnest-backend/internal/service"

	"github.com/go-redis/redis/v8"
)

// Services is every service the transports and jobs need.
type Services struct {
	Auth         service.AuthService
	User         service.UserService
	Property     service.PropertyService
	Viewing      service.ViewingService
	Application  service.ApplicationService
	Agreement    service.AgreementService
	Payment      service.PaymentService
	RentCycle    service.RentCycleService
	Ledger       service.LedgerService
	Bill         service.BillService
	Dispute      service.DisputeService
	Admin        service.AdminService
	Tokens       security.TokenManager
	Challenges   security.ChallengeStore
	Descriptions service.DescriptionGenerator
}

// OpenStore returns the configured repository backend and a function releasing it.
func OpenStore(cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Store.Type == "memory" {
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	logger.Debug("Connecting to database...", "connection_string",
		fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := postgres.Open(cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, nil, err
	}
	logger.Info("Database connection established")
	return postgres.NewStore(db), func() { closeDB(db) }, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}

// Settings maps configuration onto the lifecycle rules.
func Settings(cfg *config.Config) service.Settings {
	s := service.DefaultSettings()
	s.ServiceFeePercentage = cfg.Billing.ServiceFee()
	s.PlatformFeeDueDays = cfg.Billing.PlatformFeeDueDays
	s.ReminderDaysBefore = cfg.Billing.ReminderDaysBefore
	s.OverdueAfterDays = cfg.Billing.OverdueAfterDays
	s.RequireKYCForSigning = cfg.Lifecycle.KYCRequiredForSigning()
	s.OTPTTL = time.Duration(cfg.OTP.TTLMinutes) * time.Minute
	return s
}

// Notifier builds the out-of-band dispatcher from whichever channels are configured.
// A channel that fails to initialize is logged and left out.
func Notifier(ctx context.Context, cfg *config.Config, users notify.UserLookup) notify.Notifier {
	var channels []notify.Channel
	if cfg.Email.SendGridAPIKey != "" {
		channels = append(channels, notify.NewEmailChannel(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName))
		logger.Info("Email delivery enabled", "from", cfg.Email.FromEmail)
	}
	if cfg.Push.FirebaseCredentialsFile != "" {
		push, err := notify.NewPushChannel(ctx, cfg.Push.FirebaseCredentialsFile)
		if err != nil {
			logger.Error("Push delivery disabled", "error", err)
		} else {
			channels = append(channels, push)
			logger.Info("Push delivery enabled")
		}
	}
	if len(channels) == 0 {
		logger.Info("No notification delivery channel configured")
		return notify.Discard{}
	}
	return notify.NewDispatcher(users, channels...)
}

// ChallengeStore keeps signature OTPs in Redis when configured, otherwise in process.
func ChallengeStore(ctx context.Context, cfg *config.Config) (security.ChallengeStore, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("Using in-process OTP challenge store")
		return security.NewMemoryChallengeStore(nil), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
	return security.NewRedisChallengeStore(client), func() { client.Close() }, nil
}

// NewServices wires every service over one store.
func NewServices(cfg *config.Config, store repository.Store, notifier notify.Notifier, challenges security.ChallengeStore) *Services {
	deps := service.Deps{
		Store:    store,
		Ledger:   service.NewLedger(nil),
		Notifier: notifier,
		Settings: Settings(cfg),
	}
	tokens := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)
	descriptions := service.NewDescriptionClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second)

	return &Services{
		Auth:         service.NewAuthService(store.Users(), tokens),
		User:         service.NewUserService(deps),
		Property:     service.NewPropertyService(deps, descriptions),
		Viewing:      service.NewViewingService(deps),
		Application:  service.NewApplicationService(deps),
		Agreement:    service.NewAgreementService(deps, challenges),
		Payment:      service.NewPaymentService(deps),
		RentCycle:    service.NewRentCycleService(deps),
		Ledger:       service.NewLedgerService(store),
		Bill:         service.NewBillService(deps),
		Dispute:      service.NewDisputeService(deps),
		Admin:        service.NewAdminService(deps),
		Tokens:       tokens,
		Challenges:   challenges,
		Descriptions: descriptions,
	}
}

// SeedAdmin creates the configured super-admin if it does not exist yet.
func SeedAdmin(ctx context.Context, cfg *config.Config, auth service.AuthService) error {
	if cfg.Admin.Email == "" {
		return nil
	}
	u, created, err := auth.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	logger.Info("Admin account ready", "userID", u.ID, "created", created)
	return nil
}
