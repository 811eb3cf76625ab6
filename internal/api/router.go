// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

// Package api provides HTTP routing and handlers for the
// recommendation service: one JSON dispatch endpoint keyed on the body
// field "action", plus health and metrics surfaces.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/config"
)

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	cfg     *config.SecurityConfig
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler, cfg *config.SecurityConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup wires middleware and routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.corsOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
			r.Get("/", router.handler.HealthReady)
		})

		r.With(httprate.LimitByRealIP(
			router.cfg.RateLimitRequests,
			router.cfg.RateLimitWindow,
		)).Post("/engine", router.handler.Dispatch)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (router *Router) corsOrigins() []string {
	if len(router.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return router.cfg.CORSOrigins
}
