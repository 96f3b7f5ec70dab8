package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "spaces and blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("TEST_SHOP_INT", "nope")
	t.Setenv("TEST_SHOP_DUR", "90m")
	t.Setenv("TEST_SHOP_BOOL", "true")

	assert.Equal(t, 7, EnvIntDefault("TEST_SHOP_INT", 7))
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("TEST_SHOP_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("TEST_SHOP_DUR_MISSING", time.Hour))
	assert.True(t, EnvBoolDefault("TEST_SHOP_BOOL", false))
	assert.Equal(t, "fallback", EnvDefault("TEST_SHOP_MISSING", "fallback"))
}

func TestLoad_GuestSessionTTLDefaultsToThirtyDays(t *testing.T) {
	t.Setenv("GUEST_SESSION_TTL", "")

	cfg := Load()
	assert.Equal(t, 30*24*time.Hour, cfg.GuestSessionTTL)
	assert.Equal(t, "products", cfg.ESProductIndex)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	err := Config{}.Validate()
	assert.ErrorContains(t, err, "DATABASE_URL")
	assert.ErrorContains(t, err, "JWT_SECRET")

	ok := Config{DatabaseURL: "postgres://x", JWTAccessSecret: []byte("s")}
	assert.NoError(t, ok.Validate())

	ok.WebhookPassHash = "$2a$10$hash"
	assert.ErrorContains(t, ok.Validate(), "PAYMENT_WEBHOOK_USER")
}
