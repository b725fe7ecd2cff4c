package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyService(t *testing.T) {
	f := newFixture(t)

	t.Run("renters cannot list", func(t *testing.T) {
		_, err := f.properties.CreateProperty(f.ctx, f.tenant.ID, &domain.Property{Title: "Flat", City: "Pune", Rent: dec("100")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.properties.CreateProperty(f.ctx, f.owner.ID, &domain.Property{Title: "Flat", City: "Pune", Rent: dec("0")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	created, err := f.properties.CreateProperty(f.ctx, f.owner.ID, &domain.Property{
		Title: " 1BHK near Metro ", City: "Pune", Bedrooms: 1, Rent: dec("12000"), SecurityDeposit: dec("24000"),
		Availability: domain.AvailabilityRented,
	})
	require.NoError(t, err)
	assert.Equal(t, "1BHK near Metro", created.Title)
	assert.Equal(t, domain.AvailabilityAvailable, created.Availability)

	t.Run("search", func(t *testing.T) {
		found, total, err := f.properties.SearchProperties(f.ctx, domain.PropertyFilter{City: "Pune"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, found, 1)
		assert.Equal(t, created.ID, found[0].ID)

		mine, err := f.properties.ListMyProperties(f.ctx, f.owner.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("update by owner only", func(t *testing.T) {
		upd := *created
		upd.Rent = dec("12500")
		_, err := f.properties.UpdateProperty(f.ctx, f.tenant.ID, &upd)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		got, err := f.properties.UpdateProperty(f.ctx, f.owner.ID, &upd)
		require.NoError(t, err)
		assert.True(t, got.Rent.Equal(dec("12500")))
	})

	t.Run("availability", func(t *testing.T) {
		_, err := f.properties.SetAvailability(f.ctx, f.owner.ID, created.ID, domain.Availability("sold"))
		assert.ErrorIs(t, err, domain.ErrValidation)
		p, err := f.properties.SetAvailability(f.ctx, f.owner.ID, created.ID, domain.AvailabilityRented)
		require.NoError(t, err)
		assert.Equal(t, domain.AvailabilityRented, p.Availability)
	})

	t.Run("description without a generator", func(t *testing.T) {
		_, err := f.properties.GenerateDescription(f.ctx, f.owner.ID, created.ID)
		assert.ErrorIs(t, err, domain.ErrExternal)
	})
}

func TestDescriptionClient(t *testing.T) {
	property := &domain.Property{ID: "p-1", Title: "2BHK", City: "Bengaluru", Bedrooms: 2, Rent: dec("20000")}

	t.Run("returns the completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-model", body["model"])
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Bright 2BHK flat.  "}}]}`))
		}))
		defer srv.Close()

		client := service.NewDescriptionClient(srv.URL+"/v1/", "key", "test-model", time.Second)
		text, err := client.GenerateDescription(context.Background(), property)
		require.NoError(t, err)
		assert.Equal(t, "Bright 2BHK flat.", text)
	})

	t.Run("upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}))
		defer srv.Close()

		client := service.NewDescriptionClient(srv.URL, "key", "", time.Second)
		_, err := client.GenerateDescription(context.Background(), property)
		assert.ErrorIs(t, err, domain.ErrExternal)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("not configured", func(t *testing.T) {
		client := service.NewDescriptionClient("http://unused", "", "", time.Second)
		_, err := client.GenerateDescription(context.Background(), property)
		assert.ErrorIs(t, err, domain.ErrExternal)
	})

	t.Run("wired into the property service", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Generated"}}]}`))
		}))
		defer srv.Close()

		f := newFixture(t)
		props := service.NewPropertyService(f.deps, service.NewDescriptionClient(srv.URL, "key", "", time.Second))
		text, err := props.GenerateDescription(f.ctx, f.owner.ID, f.property.ID)
		require.NoError(t, err)
		assert.Equal(t, "Generated", text)

		_, err = props.GenerateDescription(f.ctx, f.tenant.ID, f.property.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
