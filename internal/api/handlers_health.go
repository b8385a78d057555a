// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/placewise/placewise/internal/models"
	"github.com/placewise/placewise/internal/recommend"
)

// Version is the application version reported by the health endpoint.
// Overridden at build time via -ldflags.
var Version = "dev"

// pinger verifies database liveness. Implemented by database.DB.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health.
type HealthHandler struct {
	db        pinger
	predictor *recommend.Predictor
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db pinger, predictor *recommend.Predictor) *HealthHandler {
	return &HealthHandler{
		db:        db,
		predictor: predictor,
	}
}

// Health handles GET /api/v1/health
//
// Reports overall status, database connectivity, and the age of the published
// model. A missing model is normal (the service serves top-rated fallbacks)
// and does not degrade health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:    "ok",
		Version:   Version,
		Database:  "ok",
		Timestamp: time.Now(),
	}
	httpStatus := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		httpStatus = http.StatusServiceUnavailable
	}

	if m := h.predictor.Current(); m != nil {
		status.ModelAge = time.Since(m.TrainedAt).Truncate(time.Second).String()
	}

	respondJSON(w, httpStatus, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
