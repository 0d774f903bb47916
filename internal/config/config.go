package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"

	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	"p2p-lending-engine/internal/domain/wallet"
	"p2p-lending-engine/internal/engine"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	LogLvl  string `env:"LOG_LVL"  envDefault:"info"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB"   envDefault:"lending"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"lending"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"lending"`

	RedisAddr    string `env:"REDIS_ADDR"              envDefault:"redis:6379"`
	RedisDB      int    `env:"REDIS_DB"                envDefault:"0"`
	IdempTTLSecs int    `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	// empty brokers keep events in the outbox table only
	KafkaBrokers        []string      `env:"KAFKA_BROKERS"          envSeparator:","`
	KafkaTopic          string        `env:"KAFKA_TOPIC"            envDefault:"lending.events"`
	OutboxRelayInterval time.Duration `env:"OUTBOX_RELAY_INTERVAL"  envDefault:"5s"`
	OutboxRetention     time.Duration `env:"OUTBOX_RETENTION"       envDefault:"168h"`
	SweepInterval       time.Duration `env:"OVERDUE_SWEEP_INTERVAL" envDefault:"1h"`
	SweepWorkers        int           `env:"SWEEP_WORKERS"          envDefault:"4"`
	SweepBatch          int           `env:"SWEEP_BATCH"            envDefault:"1000"`

	MaxRetries          int             `env:"ENGINE_MAX_RETRIES"        envDefault:"5"`
	RetryBackoff        time.Duration   `env:"ENGINE_RETRY_BACKOFF"      envDefault:"10ms"`
	AutoApprove         bool            `env:"LOAN_AUTO_APPROVE"         envDefault:"false"`
	ApplicationCooldown time.Duration   `env:"LOAN_APPLICATION_COOLDOWN" envDefault:"24h"`
	PenaltyGrace        time.Duration   `env:"PENALTY_GRACE_PERIOD"      envDefault:"24h"`
	PenaltyDailyRate    decimal.Decimal `env:"PENALTY_DAILY_RATE"        envDefault:"0.005"`
	DefaultAfterMissed  int             `env:"DEFAULT_AFTER_MISSED"      envDefault:"3"`
	DefaultHorizon      time.Duration   `env:"DEFAULT_HORIZON"           envDefault:"2160h"`

	DailyDepositLimit      decimal.Decimal `env:"WALLET_DAILY_DEPOSIT_LIMIT"      envDefault:"1000000"`
	DailyWithdrawalLimit   decimal.Decimal `env:"WALLET_DAILY_WITHDRAWAL_LIMIT"   envDefault:"500000"`
	DailyTransferLimit     decimal.Decimal `env:"WALLET_DAILY_TRANSFER_LIMIT"     envDefault:"1000000"`
	MonthlyDepositLimit    decimal.Decimal `env:"WALLET_MONTHLY_DEPOSIT_LIMIT"    envDefault:"10000000"`
	MonthlyWithdrawalLimit decimal.Decimal `env:"WALLET_MONTHLY_WITHDRAWAL_LIMIT" envDefault:"5000000"`
	MonthlyTransferLimit   decimal.Decimal `env:"WALLET_MONTHLY_TRANSFER_LIMIT"   envDefault:"10000000"`
}

var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(decimal.Decimal{}): func(v string) (interface{}, error) {
		return decimal.NewFromString(v)
	},
}

func Load() (*Config, error) {
	c := &Config{}
	if err := env.ParseWithFuncs(c, parsers); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("ENGINE_MAX_RETRIES must be >= 1, got %d", c.MaxRetries)
	}
	if c.SweepWorkers < 1 {
		return fmt.Errorf("SWEEP_WORKERS must be >= 1, got %d", c.SweepWorkers)
	}
	if c.PenaltyDailyRate.IsNegative() {
		return errors.New("PENALTY_DAILY_RATE must not be negative")
	}
	for name, v := range map[string]decimal.Decimal{
		"WALLET_DAILY_DEPOSIT_LIMIT":      c.DailyDepositLimit,
		"WALLET_DAILY_WITHDRAWAL_LIMIT":   c.DailyWithdrawalLimit,
		"WALLET_DAILY_TRANSFER_LIMIT":     c.DailyTransferLimit,
		"WALLET_MONTHLY_DEPOSIT_LIMIT":    c.MonthlyDepositLimit,
		"WALLET_MONTHLY_WITHDRAWAL_LIMIT": c.MonthlyWithdrawalLimit,
		"WALLET_MONTHLY_TRANSFER_LIMIT":   c.MonthlyTransferLimit,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// Engine builds the settings handed to every usecase.
func (c *Config) Engine() engine.Settings {
	return engine.Settings{
		Retry:               uow.RetryPolicy{Attempts: c.MaxRetries, Backoff: c.RetryBackoff},
		AutoApprove:         c.AutoApprove,
		ApplicationCooldown: c.ApplicationCooldown,
		Penalty:             loan.PenaltyPolicy{GracePeriod: c.PenaltyGrace, DailyRate: c.PenaltyDailyRate},
		Default:             loan.DefaultPolicy{MissedInstallments: c.DefaultAfterMissed, Horizon: c.DefaultHorizon},
		WalletLimits: wallet.Limits{
			DailyDeposit:      c.DailyDepositLimit,
			DailyWithdrawal:   c.DailyWithdrawalLimit,
			DailyTransfer:     c.DailyTransferLimit,
			MonthlyDeposit:    c.MonthlyDepositLimit,
			MonthlyWithdrawal: c.MonthlyWithdrawalLimit,
			MonthlyTransfer:   c.MonthlyTransferLimit,
		},
	}
}
