package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	LogLevel       string        `mapstructure:"log_level"`
	PublicURL      string        `mapstructure:"public_url"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	Game           Game          `mapstructure:"game"`
	Events         Events        `mapstructure:"events"`
}

// Game holds the pacing delays of a match.
type Game struct {
	RevealDelay    time.Duration `mapstructure:"reveal_delay"`
	CountdownDelay time.Duration `mapstructure:"countdown_delay"`
	MismatchDelay  time.Duration `mapstructure:"mismatch_delay"`
}

type Events struct {
	Driver  string   `mapstructure:"driver"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	NatsURL string   `mapstructure:"nats_url"`
	Subject string   `mapstructure:"subject"`
}

var ErrInvalidConfig = errors.New("invalid config")

// RegisterFlags declares the command-line overrides bound by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 8080, "port to listen on (env: PAIRS_PORT)")
	fs.String("mode", "release", "gin mode: release or debug (env: PAIRS_MODE)")
	fs.String("static-path", "./web", "directory with the web client (env: PAIRS_STATIC_PATH)")
	fs.String("log-level", "info", "zerolog level (env: PAIRS_LOG_LEVEL)")
	fs.String("public-url", "", "public address encoded in the invite QR code (env: PAIRS_PUBLIC_URL)")
	fs.String("events-driver", "none", "game event sink: none, log, kafka or nats (env: PAIRS_EVENTS_DRIVER)")
}

// Load merges defaults, config/config.<CONFIG_ENV>.yaml, PAIRS_* env vars and fs.
// fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PAIRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "pairs-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("public_url", "")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("send_buffer", 32)
	v.SetDefault("rate_limit", 30)
	v.SetDefault("rate_window", "1s")
	v.SetDefault("game.reveal_delay", "2s")
	v.SetDefault("game.countdown_delay", "4s")
	v.SetDefault("game.mismatch_delay", "2s")
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "pairs.events")
	v.SetDefault("events.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("events.subject", "pairs.events")

	if fs != nil {
		for key, flag := range map[string]string{
			"port":          "port",
			"mode":          "mode",
			"static_path":   "static-path",
			"log_level":     "log-level",
			"public_url":    "public-url",
			"events.driver": "events-driver",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AnyOrigin() && cfg.Mode == "release" {
		log.Warn().Str("module", "config").Msg(`allowed_origins "*" lets any site open a game connection; list the client origins instead`)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("events", cfg.Events.Driver).
		Msg("config ready")
	return &cfg, nil
}

// AnyOrigin reports whether allowed_origins contains the "*" wildcard.
// An empty list means same-origin only.
func (c *Config) AnyOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1-65535 inclusive: %d", ErrInvalidConfig, c.Port)
	}
	if c.Game.RevealDelay < 0 || c.Game.CountdownDelay < 0 || c.Game.MismatchDelay < 0 {
		return fmt.Errorf("%w: game delays must not be negative", ErrInvalidConfig)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("%w: send_buffer must be positive", ErrInvalidConfig)
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateWindow <= 0) {
		return fmt.Errorf("%w: rate_limit needs a positive rate_window", ErrInvalidConfig)
	}
	switch c.Events.Driver {
	case "", "none", "log":
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("%w: events.brokers is required for kafka", ErrInvalidConfig)
		}
	case "nats":
		if c.Events.NatsURL == "" {
			return fmt.Errorf("%w: events.nats_url is required for nats", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown events driver %q", ErrInvalidConfig, c.Events.Driver)
	}
	return nil
}
