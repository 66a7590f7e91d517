package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds environment-driven configuration.
type Config struct {
	Billing struct {
		HourlyRate decimal.Decimal // TIMEBILLING_HOURLY_RATE, default 0
		Currency   string          // TIMEBILLING_CURRENCY, default USD
	}
	Invoice struct {
		TaxRate  decimal.Decimal // TIMEBILLING_TAX_RATE, percent, default 0
		Discount decimal.Decimal // TIMEBILLING_DISCOUNT, default 0
	}
	Log struct {
		Level slog.Level // TIMEBILLING_LOG_LEVEL: debug, info, warn, error
	}
}

// Load reads an optional .env file (or the given files) and then the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	var err error

	if cfg.Billing.HourlyRate, err = decimalEnv("TIMEBILLING_HOURLY_RATE"); err != nil {
		return cfg, err
	}
	if cfg.Billing.HourlyRate.IsNegative() {
		return cfg, errors.New("TIMEBILLING_HOURLY_RATE must be >= 0")
	}
	cfg.Billing.Currency = strings.ToUpper(strings.TrimSpace(os.Getenv("TIMEBILLING_CURRENCY")))
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "USD"
	}

	if cfg.Invoice.TaxRate, err = decimalEnv("TIMEBILLING_TAX_RATE"); err != nil {
		return cfg, err
	}
	if cfg.Invoice.TaxRate.IsNegative() || cfg.Invoice.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return cfg, errors.New("TIMEBILLING_TAX_RATE must be between 0 and 100")
	}
	if cfg.Invoice.Discount, err = decimalEnv("TIMEBILLING_DISCOUNT"); err != nil {
		return cfg, err
	}
	if cfg.Invoice.Discount.IsNegative() {
		return cfg, errors.New("TIMEBILLING_DISCOUNT must be >= 0")
	}

	cfg.Log.Level = slog.LevelInfo
	if lv := strings.TrimSpace(os.Getenv("TIMEBILLING_LOG_LEVEL")); lv != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(lv)); err != nil {
			return cfg, fmt.Errorf("TIMEBILLING_LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func decimalEnv(key string) (decimal.Decimal, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return d, nil
}
