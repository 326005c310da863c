package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
	Report    Report    `mapstructure:",squash"`
	Rates     Rates     `mapstructure:",squash"`
	Scheduler Scheduler `mapstructure:",squash"`
	SMTP      SMTP      `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Auth struct {
	Secret        string `mapstructure:"auth_secret"`
	TokenTTLHours int    `mapstructure:"auth_token_ttl_hours"`
}

// Report holds the analytics thresholds and windows. All money values are in
// the reporting currency. Defaults mirror the dashboard's production setup:
// KZT reporting, 30M/100M/300M liquidity bands, 50M low-liquidity risk floor.
type Report struct {
	ReportingCurrency string `mapstructure:"report_currency"`

	CriticalBelow      float64 `mapstructure:"report_threshold_critical"`
	LowBelow           float64 `mapstructure:"report_threshold_low"`
	ExcessAbove        float64 `mapstructure:"report_threshold_excess"`
	RiskLiquidityBelow float64 `mapstructure:"report_risk_liquidity_floor"`

	CurrencySharePercent float64 `mapstructure:"report_risk_currency_share_percent"`
	BankSharePercent     float64 `mapstructure:"report_risk_bank_share_percent"`

	LiquidityLookbackDays  int `mapstructure:"report_liquidity_lookback_days"`
	LiquidityLookaheadDays int `mapstructure:"report_liquidity_lookahead_days"`
	CashflowLookbackDays   int `mapstructure:"report_cashflow_lookback_days"`
	CashflowLookaheadDays  int `mapstructure:"report_cashflow_lookahead_days"`

	ConstrainedMaxAccounts        int `mapstructure:"report_constrained_max_accounts"`
	ConstrainedMaxRisks           int `mapstructure:"report_constrained_max_risks"`
	ConstrainedMaxEntries         int `mapstructure:"report_constrained_max_entries"`
	ConstrainedMaxRecommendations int `mapstructure:"report_constrained_max_recommendations"`

	OutputDir string `mapstructure:"report_output_dir"`
}

// Rates is the fixed conversion table into the reporting currency. Pairs is
// the raw "CUR:factor" list from the environment; Table is built from it in
// NewConfig.
type Rates struct {
	Pairs []string                   `mapstructure:"rates_table"`
	Table map[string]decimal.Decimal `mapstructure:"-"`
}

type Scheduler struct {
	TickSeconds int    `mapstructure:"scheduler_tick_seconds"`
	SweepCron   string `mapstructure:"scheduler_sweep_cron"`
	Enabled     bool   `mapstructure:"scheduler_enabled"`
}

type SMTP struct {
	Host           string `mapstructure:"smtp_host"`
	Port           string `mapstructure:"smtp_port"`
	Username       string `mapstructure:"smtp_username"`
	Password       string `mapstructure:"smtp_password"`
	From           string `mapstructure:"smtp_from"`
	TimeoutSeconds int    `mapstructure:"smtp_timeout_seconds"`
	QueueSize      int    `mapstructure:"smtp_queue_size"`
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/findash")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")
	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 24)

	viper.SetDefault("REPORT_CURRENCY", "KZT")
	viper.SetDefault("REPORT_THRESHOLD_CRITICAL", 30_000_000.0)
	viper.SetDefault("REPORT_THRESHOLD_LOW", 100_000_000.0)
	viper.SetDefault("REPORT_THRESHOLD_EXCESS", 300_000_000.0)
	viper.SetDefault("REPORT_RISK_LIQUIDITY_FLOOR", 50_000_000.0)
	viper.SetDefault("REPORT_RISK_CURRENCY_SHARE_PERCENT", 70.0)
	viper.SetDefault("REPORT_RISK_BANK_SHARE_PERCENT", 60.0)
	viper.SetDefault("REPORT_LIQUIDITY_LOOKBACK_DAYS", 7)
	viper.SetDefault("REPORT_LIQUIDITY_LOOKAHEAD_DAYS", 30)
	viper.SetDefault("REPORT_CASHFLOW_LOOKBACK_DAYS", 30)
	viper.SetDefault("REPORT_CASHFLOW_LOOKAHEAD_DAYS", 30)
	viper.SetDefault("REPORT_CONSTRAINED_MAX_ACCOUNTS", 3)
	viper.SetDefault("REPORT_CONSTRAINED_MAX_RISKS", 3)
	viper.SetDefault("REPORT_CONSTRAINED_MAX_ENTRIES", 5)
	viper.SetDefault("REPORT_CONSTRAINED_MAX_RECOMMENDATIONS", 2)
	viper.SetDefault("REPORT_OUTPUT_DIR", "./reports")

	viper.SetDefault("RATES_TABLE", "USD:480,EUR:520,RUB:5.2")

	viper.SetDefault("SCHEDULER_TICK_SECONDS", 60)
	viper.SetDefault("SCHEDULER_SWEEP_CRON", "0 * * * *") // hourly sweep
	viper.SetDefault("SCHEDULER_ENABLED", true)

	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "reports@findash.local")
	viper.SetDefault("SMTP_TIMEOUT_SECONDS", 10)
	viper.SetDefault("SMTP_QUEUE_SIZE", 64)
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("no .env readable by viper, relying on environment: ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	config.Rates.Table, err = parseRatePairs(config.Rates.Pairs)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// parseRatePairs turns "USD:480,EUR:520" entries into a conversion table
// keyed by source currency. A malformed pair is a startup error, not a
// warning: a missing rate would otherwise surface mid-run as a failed report.
func parseRatePairs(pairs []string) (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal, len(pairs))

	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed rate pair %q, expected CUR:factor", pair)
		}

		factor, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed rate factor in %q: %w", pair, err)
		}

		table[strings.ToUpper(strings.TrimSpace(parts[0]))] = factor
	}

	return table, nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("could not resolve working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("loaded .env from: ", location)
			return
		}
	}
}
