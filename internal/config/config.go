package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fruitstore-pricing/internal/common"
	"github.com/noah-isme/fruitstore-pricing/internal/coupon"
	"github.com/noah-isme/fruitstore-pricing/internal/obs"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv           string `validate:"required"`
	LogLevel         string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat        string `validate:"oneof=json console text"`
	MetricsNamespace string `validate:"required"`
	MetricsBuckets   []float64

	TracingExporter      string  `validate:"oneof=none otlp"`
	TracingEndpoint      string  `validate:"omitempty,url"`
	TracingSamplingRatio float64 `validate:"gte=0,lte=1"`

	CardBonusMultiplier decimal.Decimal `validate:"gt=0,lte=1"`
	GiftBagWeightKg     decimal.Decimal `validate:"gt=0"`
	GiftCouponThreshold decimal.Decimal `validate:"gt=0"`
	GiftCouponStart     int             `validate:"gte=0"`
	CouponCapUnit       decimal.Decimal `validate:"gt=0"`
	CouponOverrides     map[string]coupon.Override
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		LogLevel:             strings.ToLower(valueOrDefault(k.String("LOG_LEVEL"), "info")),
		LogFormat:            strings.ToLower(valueOrDefault(k.String("LOG_FORMAT"), "json")),
		MetricsNamespace:     valueOrDefault(k.String("METRICS_NAMESPACE"), "fruitstore"),
		MetricsBuckets:       obs.ParseBucketsCSV(k.String("METRICS_QUOTE_BUCKETS_MS")),
		TracingExporter:      strings.ToLower(valueOrDefault(k.String("TRACING_EXPORTER"), "none")),
		TracingEndpoint:      strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
		TracingSamplingRatio: parseFloat(k.String("TRACING_SAMPLING_RATIO"), 1),
		GiftCouponStart:      common.AtoiDefault(k.String("PRICING_GIFT_COUPON_START"), 0),
	}

	var err error
	if cfg.CardBonusMultiplier, err = parseDecimal("PRICING_CARD_BONUS_MULTIPLIER", k.String("PRICING_CARD_BONUS_MULTIPLIER"), "1"); err != nil {
		return nil, err
	}
	if cfg.GiftBagWeightKg, err = parseDecimal("PRICING_GIFT_BAG_WEIGHT_KG", k.String("PRICING_GIFT_BAG_WEIGHT_KG"), "5"); err != nil {
		return nil, err
	}
	if cfg.GiftCouponThreshold, err = parseDecimal("PRICING_GIFT_COUPON_THRESHOLD", k.String("PRICING_GIFT_COUPON_THRESHOLD"), "20000"); err != nil {
		return nil, err
	}
	if cfg.CouponCapUnit, err = parseDecimal("PRICING_COUPON_CAP_UNIT", k.String("PRICING_COUPON_CAP_UNIT"), "1000"); err != nil {
		return nil, err
	}
	if cfg.CouponOverrides, err = parseOverrides(k.String("PRICING_COUPON_OVERRIDES")); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks field constraints and reports every violation at once.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		} else {
			fields = append(fields, err.Error())
		}
		return common.Errorf(common.ErrInvalidConfiguration, "config: %s", strings.Join(fields, "; "))
	}
	return nil
}

// parseOverrides reads "CODE=percent[:cap]" entries separated by commas.
func parseOverrides(value string) (map[string]coupon.Override, error) {
	entries := splitAndTrim(value)
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]coupon.Override, len(entries))
	for _, entry := range entries {
		code, params, ok := strings.Cut(entry, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "PRICING_COUPON_OVERRIDES: malformed entry %q", entry)
		}
		pctRaw, capRaw, hasCap := strings.Cut(params, ":")
		pct, err := decimal.NewFromString(strings.TrimSpace(pctRaw))
		if err != nil {
			return nil, common.Errorf(common.ErrInvalidConfiguration, "PRICING_COUPON_OVERRIDES: %s percent: %v", code, err)
		}
		o := coupon.Override{Percent: pct}
		if hasCap {
			limit, err := decimal.NewFromString(strings.TrimSpace(capRaw))
			if err != nil {
				return nil, common.Errorf(common.ErrInvalidConfiguration, "PRICING_COUPON_OVERRIDES: %s cap: %v", code, err)
			}
			o.Cap = &limit
		}
		out[code] = o
	}
	return out, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDecimal(key, value, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(valueOrDefault(value, fallback))
	if err != nil {
		return decimal.Zero, common.Errorf(common.ErrInvalidConfiguration, "%s: %v", key, err)
	}
	return d, nil
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
