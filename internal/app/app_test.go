package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"rentnest-backend/internal/config"
	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/notify"
	"rentnest-backend/internal/repository/memory"
	"rentnest-backend/internal/security"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Store:   config.StoreConfig{Type: "memory"},
		JWT:     config.JWTConfig{Secret: strings.Repeat("k", 32)},
		Storage: config.StorageConfig{UploadDir: t.TempDir()},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestSettings(t *testing.T) {
	cfg := testConfig(t)
	off := false
	cfg.Lifecycle.RequireKYCForSigning = &off
	cfg.Billing.ServiceFeePercentage = "3"
	cfg.OTP.TTLMinutes = 5

	s := Settings(cfg)
	assert.True(t, s.ServiceFeePercentage.Equal(decimal.NewFromInt(3)))
	assert.False(t, s.RequireKYCForSigning)
	assert.Equal(t, 5*time.Minute, s.OTPTTL)
	assert.Equal(t, 7, s.PlatformFeeDueDays)
	assert.Equal(t, 5, s.ReminderDaysBefore)
	assert.Equal(t, 3, s.OverdueAfterDays)
}

func TestOpenStoreMemory(t *testing.T) {
	store, closeFn, err := OpenStore(testConfig(t))
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.Store{}, store)
}

func TestNotifierWithoutChannels(t *testing.T) {
	n := Notifier(context.Background(), testConfig(t), memory.NewStore().Users())
	assert.IsType(t, notify.Discard{}, n)
}

func TestNotifierWithEmail(t *testing.T) {
	cfg := testConfig(t)
	cfg.Email.SendGridAPIKey = "SG.test"
	cfg.Email.FromEmail = "no-reply@example.com"
	n := Notifier(context.Background(), cfg, memory.NewStore().Users())
	assert.IsType(t, &notify.Dispatcher{}, n)
}

func TestChallengeStoreFallsBackToMemory(t *testing.T) {
	cs, closeFn, err := ChallengeStore(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, cs.Put(context.Background(), "k", "123456", time.Minute))
	code, err := cs.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
}

func TestSeedAdmin(t *testing.T) {
	cfg := testConfig(t)
	store := memory.NewStore()
	svc := NewServices(cfg, store, notify.Discard{}, security.NewMemoryChallengeStore(nil))

	t.Run("no admin configured", func(t *testing.T) {
		require.NoError(t, SeedAdmin(context.Background(), cfg, svc.Auth))
		users, err := store.Users().List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("creates once", func(t *testing.T) {
		cfg.Admin = config.AdminConfig{Email: "root@example.com", Password: "password123", Name: "Root"}
		require.NoError(t, SeedAdmin(context.Background(), cfg, svc.Auth))
		require.NoError(t, SeedAdmin(context.Background(), cfg, svc.Auth))

		users, err := store.Users().List(context.Background(), domain.UserRoleSuperAdmin)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
