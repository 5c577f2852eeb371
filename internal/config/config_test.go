package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing-for-test")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.Mode != "release" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Game.RevealDelay != 2*time.Second || cfg.Game.CountdownDelay != 4*time.Second || cfg.Game.MismatchDelay != 2*time.Second {
		t.Fatalf("game = %+v", cfg.Game)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.SendBuffer != 32 {
		t.Fatalf("ping = %v buffer = %d", cfg.PingPeriod, cfg.SendBuffer)
	}
	if len(cfg.AllowedOrigins) != 0 || cfg.AnyOrigin() {
		t.Fatalf("origins = %v, want same-origin only", cfg.AllowedOrigins)
	}
	if cfg.RateLimit != 30 || cfg.RateWindow != time.Second {
		t.Fatalf("rate = %d per %v", cfg.RateLimit, cfg.RateWindow)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing-for-test")
	t.Setenv("PAIRS_GAME_MISMATCH_DELAY", "250ms")
	t.Setenv("PAIRS_PORT", "9000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--mode", "debug"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "debug" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.Game.MismatchDelay != 250*time.Millisecond {
		t.Fatalf("mismatch delay = %v", cfg.Game.MismatchDelay)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Port: 8080, SendBuffer: 8, Events: Events{Driver: "none"}}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"delay", func(c *Config) { c.Game.MismatchDelay = -time.Second }},
		{"buffer", func(c *Config) { c.SendBuffer = 0 }},
		{"driver", func(c *Config) { c.Events.Driver = "carrier-pigeon" }},
		{"kafka brokers", func(c *Config) { c.Events.Driver = "kafka" }},
		{"rate window", func(c *Config) { c.RateLimit = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v", err)
			}
		})
	}
	c := base()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
}
