package config

import (
	"errors"
	"fmt"
)

func requireNonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	errs := []error{
		requireNonEmpty(c.DatabaseURL, "DATABASE_URL"),
		requireNonEmpty(string(c.JWTAccessSecret), "JWT_SECRET"),
	}
	if c.WebhookPassHash != "" && c.WebhookUser == "" {
		errs = append(errs, fmt.Errorf("PAYMENT_WEBHOOK_USER is required when PAYMENT_WEBHOOK_PASSWORD_HASH is set"))
	}
	return errors.Join(errs...)
}
