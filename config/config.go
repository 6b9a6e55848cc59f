/*
Package config loads deployment configuration from the environment.

PURPOSE:
  One typed Config for the whole process. A .env file is honored when
  present; otherwise plain environment variables apply. Every knob has a
  sensible default so `go run ./cmd/server` works out of the box.

KEYS:
  PORT                   HTTP port                        (default 8080)
  DATABASE_PATH          SQLite path, ":memory:" allowed  (default yield.db)
  INTEREST_RATE_PERCENT  Total interest per investment    (default 22)
  INSTALLMENT_COUNT      Installments per investment      (default 8)
  INSTALLMENT_INTERVAL   Spacing between due dates        (default 336h)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/yield-engine/invest"
)

// Config is the process-wide configuration.
type Config struct {
	Port         int
	DatabasePath string
	Terms        invest.Terms
}

// Load reads configuration from the environment, honoring a .env file when
// one exists.
func Load() (*Config, error) {
	// Missing .env is fine; variables may come from the shell or the
	// orchestrator.
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	rate, err := getEnvDecimal("INTEREST_RATE_PERCENT", decimal.NewFromInt(22))
	if err != nil {
		return nil, err
	}
	installments, err := getEnvInt("INSTALLMENT_COUNT", 8)
	if err != nil {
		return nil, err
	}
	if installments < 1 {
		return nil, fmt.Errorf("INSTALLMENT_COUNT must be at least 1, got %d", installments)
	}
	interval, err := getEnvDuration("INSTALLMENT_INTERVAL", 14*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:         port,
		DatabasePath: getEnvString("DATABASE_PATH", "yield.db"),
		Terms: invest.Terms{
			Rate:         rate,
			Installments: installments,
			Interval:     interval,
		},
	}, nil
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDecimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
