// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

// Package main is the entry point for the Astra Villa recommendation server.
//
// The server scores the active property catalog against a user's explicit
// preferences and learned behavior, and exposes the engine over a single
// action-dispatch HTTP endpoint.
//
// # Application Architecture
//
// Components initialize in the following order:
//
//  1. Configuration: layered defaults, config file, and environment (Koanf v2)
//  2. Database: DuckDB catalog, signal, and preference storage
//  3. Event bus: in-process Watermill bus for recommendation history and
//     preference reinforcement
//  4. AI client: optional match-report explanations via an OpenAI-compatible API
//  5. Recommendation engine and HTTP API
//  6. Supervisor tree: suture-supervised event bus and HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest wins):
//   - Environment variables (SERVER_PORT, DATABASE_PATH, ENGINE_*, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
// drains in-flight requests, the event bus router stops, and the database
// checkpoints before closing.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/ai"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/api"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/auth"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/config"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/database"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/events"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/logging"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/recommend"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/supervisor"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting Astra Villa recommendation server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Demo data seeding failed")
		}
	}

	bus, err := events.NewBus(events.Config{
		BufferSize:   cfg.Events.BufferSize,
		CloseTimeout: cfg.Events.CloseTimeout,
	}, logging.WithComponent("events"))
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	bus.RegisterConsumer(events.NewConsumer(db, logging.WithComponent("consumer")))

	// The engine treats a nil explainer as "no AI narrative available".
	var explainer recommend.Explainer
	if cfg.AI.Enabled {
		explainer = ai.NewClient(cfg.AI, logging.WithComponent("ai"))
		logging.Info().Str("model", cfg.AI.Model).Msg("AI explanations enabled")
	} else {
		logging.Info().Msg("AI explanations disabled")
	}

	engine, err := recommend.NewEngine(&cfg.Engine, db, bus, explainer, logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("create recommendation engine: %w", err)
	}

	verifier := auth.NewVerifier(cfg.Security.JWTSecret)
	if cfg.Security.JWTSecret == "" {
		logging.Warn().Msg("JWT_SECRET not set - all requests will be served as anonymous")
	}

	handler := api.NewHandler(engine, verifier, db)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddEventService(services.NewEventBusService(bus))
	// Hold the listener until the bus subscribers are attached so the
	// first requests cannot lose their fire-and-forget events.
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout).WaitUntil(bus.Running()))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}
