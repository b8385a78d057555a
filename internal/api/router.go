// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/placewise/placewise/internal/config"
)

// Router assembles the HTTP handler tree.
type Router struct {
	cfg       *config.Config
	recommend *RecommendHandler
	health    *HealthHandler
}

// NewRouter creates a router over the given handlers.
func NewRouter(cfg *config.Config, recommendHandler *RecommendHandler, healthHandler *HealthHandler) *Router {
	return &Router{
		cfg:       cfg,
		recommend: recommendHandler,
		health:    healthHandler,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ========================
	// Health & Metrics
	// ========================
	r.Get("/api/v1/health", router.health.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Recommendation Endpoints
	// ========================
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		if !router.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(
				router.cfg.Security.RateLimitReqs,
				router.cfg.Security.RateLimitWindow,
			))
		}
		r.Use(Identity(router.cfg.Security.JWTSecret))

		r.Get("/", router.recommend.GetRecommendations)
		r.Post("/train", router.recommend.TriggerTraining)
	})

	return r
}
