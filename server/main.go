package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)

	if cfg.ClientDir == "" {
		exe, _ := os.Executable()
		cfg.ClientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(cfg.ClientDir); os.IsNotExist(err) {
			cfg.ClientDir = "../client"
		}
	}

	var db *DB
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("database")
		}
		defer db.Close()
	}
	var telemetry *Telemetry
	if db != nil {
		telemetry = NewTelemetry(db, log.With().Str("component", "telemetry").Logger())
	}

	pairer, err := NewPairer(cfg.PairingSecret, cfg.PairingTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("pairing")
	}

	meterProvider, err := NewMeterProvider(cfg.MetricsExporter, cfg.MetricsInterval, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("meter provider")
	}
	otel.SetMeterProvider(meterProvider)

	sessions := NewSessionManager(cfg.GameConfig(), cfg.MaxSessions, telemetry, log)
	metrics, err := NewMetrics(meterProvider, sessions.Count)
	if err != nil {
		log.Fatal().Err(err).Msg("metrics")
	}
	sessions.SetMetrics(metrics)

	hub := NewHub(HubOptions{
		Sessions:    sessions,
		Pairer:      pairer,
		DB:          db,
		PublicURL:   cfg.PublicURL,
		DefaultMode: cfg.Mode,
		Log:         log,
	})
	go hub.Run()

	mux := SetupRoutes(hub, cfg.ClientDir)
	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("client", cfg.ClientDir).
			Str("mode", cfg.Mode.String()).
			Bool("telemetry", db != nil).
			Str("metrics", cfg.MetricsExporter).
			Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	sessions.EndAll()
	telemetry.Stop()
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("metrics shutdown")
	}
}
