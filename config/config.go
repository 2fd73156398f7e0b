// Package config carrega a configuração do gateway a partir do ambiente
// (com .env opcional).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	BotToken            string `env:"BOT_TOKEN"`
	PublicKey           string `env:"PUBLIC_KEY,required,notEmpty"`
	RegisterCommandsKey string `env:"REGISTER_COMMANDS_KEY"`
	ApplicationID       string `env:"APPLICATION_ID"`

	Discord   DiscordConfig
	RateLimit RateLimitConfig

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`
}

type DiscordConfig struct {
	BaseURL        string        `env:"DISCORD_API_BASE_URL" envDefault:"https://discord.com/api/v10"`
	AttemptTimeout time.Duration `env:"DISCORD_ATTEMPT_TIMEOUT" envDefault:"5s"`
	MaxRetries     int           `env:"DISCORD_MAX_RETRIES" envDefault:"2"`
	RetryBaseDelay time.Duration `env:"DISCORD_RETRY_BASE_DELAY" envDefault:"250ms"`
	RequestsPerSec float64       `env:"OUTBOUND_RPS" envDefault:"50"`
}

type RateLimitConfig struct {
	// Sem RedisURL o limitador usa apenas a janela em memória.
	RedisURL      string        `env:"RATE_LIMIT_REDIS_URL"`
	RedisToken    string        `env:"RATE_LIMIT_REDIS_TOKEN"`
	Prefix        string        `env:"RATE_LIMIT_PREFIX" envDefault:"rate_limit"`
	Max           int           `env:"RATE_LIMIT_MAX" envDefault:"5"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RemoteTimeout time.Duration `env:"RATE_LIMIT_REMOTE_TIMEOUT" envDefault:"500ms"`
	KeyHeader     string        `env:"RATE_LIMIT_KEY_HEADER"`

	StatsEnabled bool          `env:"RATE_STATS_ENABLED" envDefault:"false"`
	StatsPrefix  string        `env:"RATE_STATS_PREFIX" envDefault:"rate_limit:stats"`
	StatsTTL     time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	// contadores por cliente; cardinalidade alta, desligado por padrão
	StatsTrackKeys bool `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`
}

func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

func (c Config) Development() bool {
	return !c.Production()
}

// Load lê um .env quando existir e depois o ambiente do processo.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom usa apenas o mapa dado (testes e ferramentas).
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be > 0"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be > 0"))
	}
	if c.RateLimit.StatsEnabled && strings.TrimSpace(c.RateLimit.RedisURL) == "" {
		errs = append(errs, errors.New("RATE_LIMIT_REDIS_URL is required when RATE_STATS_ENABLED=true"))
	}
	if c.Discord.MaxRetries < 0 {
		errs = append(errs, errors.New("DISCORD_MAX_RETRIES must be >= 0"))
	}
	if c.Discord.AttemptTimeout <= 0 {
		errs = append(errs, errors.New("DISCORD_ATTEMPT_TIMEOUT must be > 0"))
	}
	if c.ConcurrencyMax < 0 {
		errs = append(errs, errors.New("CONCURRENCY_MAX must be >= 0"))
	}
	return errors.Join(errs...)
}
