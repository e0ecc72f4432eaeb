package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type SettlementConfig struct {
	MaxAttempts     int
	RetryBaseDelay  time.Duration
	DepositCapRatio decimal.Decimal
}

type ReportConfig struct {
	BestClientsLimit int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Settlement  SettlementConfig
	Report      ReportConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_TX_TIMEOUT", "5s")
	v.SetDefault("SETTLEMENT_MAX_ATTEMPTS", 3)
	v.SetDefault("SETTLEMENT_RETRY_BASE_DELAY", "50ms")
	v.SetDefault("DEPOSIT_CAP_RATIO", "0.25")
	v.SetDefault("REPORT_BEST_CLIENTS_LIMIT", 2)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:          v.GetString("DB_DSN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Settlement: SettlementConfig{
			MaxAttempts: v.GetInt("SETTLEMENT_MAX_ATTEMPTS"),
		},
		Report: ReportConfig{
			BestClientsLimit: v.GetInt("REPORT_BEST_CLIENTS_LIMIT"),
		},
	}

	var err error
	if cfg.DB.ConnMaxLifetime, err = parseDuration("DB_CONN_MAX_LIFETIME", v.GetString("DB_CONN_MAX_LIFETIME")); err != nil {
		return nil, err
	}
	if cfg.DB.TxTimeout, err = parseDuration("DB_TX_TIMEOUT", v.GetString("DB_TX_TIMEOUT")); err != nil {
		return nil, err
	}
	if cfg.Settlement.RetryBaseDelay, err = parseDuration("SETTLEMENT_RETRY_BASE_DELAY", v.GetString("SETTLEMENT_RETRY_BASE_DELAY")); err != nil {
		return nil, err
	}
	if cfg.Settlement.DepositCapRatio, err = decimal.NewFromString(strings.TrimSpace(v.GetString("DEPOSIT_CAP_RATIO"))); err != nil {
		return nil, fmt.Errorf("DEPOSIT_CAP_RATIO is invalid: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Settlement.MaxAttempts < 1 {
		return fmt.Errorf("SETTLEMENT_MAX_ATTEMPTS must be at least 1")
	}
	if !cfg.Settlement.DepositCapRatio.IsPositive() {
		return fmt.Errorf("DEPOSIT_CAP_RATIO must be positive")
	}
	if cfg.Report.BestClientsLimit < 1 {
		return fmt.Errorf("REPORT_BEST_CLIENTS_LIMIT must be at least 1")
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is invalid: %w", key, err)
	}
	return d, nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
