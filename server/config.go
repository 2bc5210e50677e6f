package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const envPrefix = "RETRO"

// Config is the resolved server configuration
type Config struct {
	Addr          string
	ClientDir     string
	PublicURL     string
	TickRate      int
	BroadcastRate int
	Mode          sim.Mode
	Seed          uint64
	MaxSessions   int
	DBPath        string
	PairingSecret string
	PairingTTL    time.Duration
	LogLevel      string
	LogPretty     bool

	MetricsExporter string
	MetricsInterval time.Duration
}

// GameConfig returns the per-run loop settings
func (c Config) GameConfig() GameConfig {
	return GameConfig{TickRate: c.TickRate, BroadcastRate: c.BroadcastRate, Seed: c.Seed}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("clientDir", "")
	v.SetDefault("publicURL", "")
	v.SetDefault("tickRate", DefaultTickRate)
	v.SetDefault("broadcastRate", DefaultBroadcastRate)
	v.SetDefault("mode", "arcade")
	v.SetDefault("seed", 0)
	v.SetDefault("maxSessions", defaultMaxSessions)

	v.SetDefault("db.path", "retrowave.db")

	v.SetDefault("pairing.secret", "")
	v.SetDefault("pairing.ttl", defaultPairingTTL)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("metrics.exporter", ExporterNone)
	v.SetDefault("metrics.interval", 30*time.Second)
}

// LoadConfig resolves configuration from defaults, an optional config file
// (--config), RETRO_* environment variables and command-line flags, in
// increasing priority
func LoadConfig(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("retrowave-server", pflag.ContinueOnError)
	fs.String("config", "", "config file (json, yaml or toml)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("client", "", "path to the renderer directory (default: ../client)")
	fs.String("public-url", "", "external base URL used in pairing links")
	fs.String("mode", "arcade", "default game mode: arcade or classic")
	fs.Uint64("seed", 0, "obstacle seed, 0 for a random seed per run")
	fs.String("db", "retrowave.db", "SQLite path for run telemetry, empty to disable")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error")
	fs.Bool("log-pretty", false, "human-readable console logs")
	fs.String("metrics", ExporterNone, "metrics exporter: none or stdout")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parsing flags: %w", err)
	}

	for key, flag := range map[string]string{
		"addr":       "addr",
		"clientDir":  "client",
		"publicURL":  "public-url",
		"mode":       "mode",
		"seed":       "seed",
		"db.path":    "db",
		"log.level":  "log-level",
		"log.pretty": "log-pretty",

		"metrics.exporter": "metrics",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	mode, err := sim.ParseMode(v.GetString("mode"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Addr:          v.GetString("addr"),
		ClientDir:     v.GetString("clientDir"),
		PublicURL:     v.GetString("publicURL"),
		TickRate:      v.GetInt("tickRate"),
		BroadcastRate: v.GetInt("broadcastRate"),
		Mode:          mode,
		Seed:          v.GetUint64("seed"),
		MaxSessions:   v.GetInt("maxSessions"),
		DBPath:        v.GetString("db.path"),
		PairingSecret: v.GetString("pairing.secret"),
		PairingTTL:    v.GetDuration("pairing.ttl"),
		LogLevel:      v.GetString("log.level"),
		LogPretty:     v.GetBool("log.pretty"),

		MetricsExporter: v.GetString("metrics.exporter"),
		MetricsInterval: v.GetDuration("metrics.interval"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tickRate must be positive, got %d", c.TickRate))
	}
	if c.BroadcastRate <= 0 || c.BroadcastRate > c.TickRate {
		errs = append(errs, fmt.Errorf("broadcastRate must be in 1..tickRate, got %d", c.BroadcastRate))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("maxSessions must be positive, got %d", c.MaxSessions))
	}
	if c.PairingTTL <= 0 {
		errs = append(errs, fmt.Errorf("pairing.ttl must be positive, got %s", c.PairingTTL))
	}
	switch c.MetricsExporter {
	case ExporterNone, ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("metrics.exporter must be %s or %s, got %q", ExporterNone, ExporterStdout, c.MetricsExporter))
	}
	if c.MetricsInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.interval must be positive, got %s", c.MetricsInterval))
	}
	return errors.Join(errs...)
}
