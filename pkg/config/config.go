package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret []byte

	GuestSessionTTL      time.Duration
	GuestCleanupInterval time.Duration

	KafkaBrokers []string

	ESURL          string
	ESUser         string
	ESPassword     string
	ESProductIndex string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PaymentAPIURL     string
	PaymentShopID     string
	PaymentSecretKey  string
	PaymentReturnURL  string
	WebhookUser       string
	WebhookPassHash   string
	AdvanceOnPayment  bool
	NotifyFromAddress string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "plant_shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		GuestSessionTTL:      EnvDurationDefault("GUEST_SESSION_TTL", 30*24*time.Hour),
		GuestCleanupInterval: EnvDurationDefault("GUEST_CLEANUP_INTERVAL", time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		ESProductIndex: EnvDefault("ES_PRODUCT_INDEX", "products"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		PaymentAPIURL:     EnvDefault("PAYMENT_API_URL", "https://api.yookassa.ru/v3/"),
		PaymentShopID:     os.Getenv("PAYMENT_SHOP_ID"),
		PaymentSecretKey:  os.Getenv("PAYMENT_SECRET_KEY"),
		PaymentReturnURL:  os.Getenv("PAYMENT_RETURN_URL"),
		WebhookUser:       os.Getenv("PAYMENT_WEBHOOK_USER"),
		WebhookPassHash:   os.Getenv("PAYMENT_WEBHOOK_PASSWORD_HASH"),
		AdvanceOnPayment:  EnvBoolDefault("ORDER_ADVANCE_ON_PAYMENT", false),
		NotifyFromAddress: os.Getenv("NOTIFY_FROM_EMAIL"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
