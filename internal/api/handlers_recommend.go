// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/placewise/placewise/internal/logging"
	"github.com/placewise/placewise/internal/metrics"
	"github.com/placewise/placewise/internal/models"
	"github.com/placewise/placewise/internal/recommend"
)

// trainTimeout bounds a single training run triggered over the API.
const trainTimeout = 30 * time.Minute

// RecommendHandler handles the recommendation API endpoints.
type RecommendHandler struct {
	engine    *recommend.Engine
	trainer   *recommend.Trainer
	predictor *recommend.Predictor
}

// NewRecommendHandler creates a recommendation handler.
func NewRecommendHandler(engine *recommend.Engine, trainer *recommend.Trainer, predictor *recommend.Predictor) *RecommendHandler {
	return &RecommendHandler{
		engine:    engine,
		trainer:   trainer,
		predictor: predictor,
	}
}

// coordinatesQuery carries the optional location filter of a recommendations
// request.
type coordinatesQuery struct {
	Lat float64 `validate:"omitempty,latitude"`
	Lng float64 `validate:"omitempty,longitude"`
}

// GetRecommendations handles GET /api/v1/recommendations?lat=&lng=
//
// Returns up to ten places ranked for the caller. Authenticated callers with
// a published model get personalized results; everyone else gets the
// top-rated ranking. Both lat and lng must be supplied to filter by location.
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := recommend.Request{
		AccountID: GetAccountID(r.Context()),
	}

	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			respondError(w, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lng must both be valid numbers", nil)
			return
		}

		q := coordinatesQuery{Lat: lat, Lng: lng}
		if apiErr := validateRequest(&q); apiErr != nil {
			respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
			return
		}

		req.HasLocation = true
		req.Lat = lat
		req.Lng = lng
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	metrics.RecordRecommendation(resp.Reason, time.Since(start))

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   toRecommendationsData(resp),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// TriggerTraining handles POST /api/v1/recommendations/train
//
// Runs a training pass synchronously and reports the evaluation metrics.
// Returns 409 if a training run is already active.
func (h *RecommendHandler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), trainTimeout)
	defer cancel()

	start := time.Now()
	trainMetrics, err := h.trainer.Train(ctx)
	if err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			respondError(w, http.StatusConflict, "TRAINING_IN_PROGRESS", "Training is already in progress", nil)
			return
		}
		metrics.RecordTrainingRun(metrics.OutcomeFailed, time.Since(start))
		respondError(w, http.StatusInternalServerError, "TRAINING_FAILED", "Model training failed", err)
		return
	}

	outcome := metrics.OutcomeTrained
	message := "Training complete"
	if trainMetrics == (recommend.Metrics{}) {
		// Zero metrics with nil error means the run was skipped for lack of
		// data; the published model (if any) is unchanged.
		outcome = metrics.OutcomeSkipped
		message = "Not enough data to train, model unchanged"
	}
	metrics.RecordTrainingRun(outcome, time.Since(start))

	if outcome == metrics.OutcomeTrained {
		if m := h.predictor.Current(); m != nil {
			metrics.RecordPublishedModel(m.SignalCount, m.TrainedAt)
		}
	}

	logging.Info().
		Str("outcome", outcome).
		Float64("rmse", trainMetrics.RMSE).
		Float64("r_squared", trainMetrics.RSquared).
		Msg("Training triggered via API")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.TrainData{
			Message: message,
			Metrics: models.TrainMetrics{
				RMSE:     round4(trainMetrics.RMSE),
				RSquared: round4(trainMetrics.RSquared),
			},
			Note: "Lower RMSE is better. RSquared closer to 1 is better.",
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// toRecommendationsData converts an engine response to the API payload.
func toRecommendationsData(resp *recommend.Response) models.RecommendationsData {
	places := make([]models.RecommendedPlace, len(resp.Results))
	for i, rec := range resp.Results {
		places[i] = models.RecommendedPlace{
			PlaceID:     rec.PlaceID,
			Name:        rec.Name,
			Address:     rec.Address,
			Category:    rec.Category,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			ProviderID:  rec.ProviderID,
			Rating:      rec.Rating,
			ReviewCount: rec.ReviewCount,
			ImageURL:    rec.ImageURL,
		}
	}

	return models.RecommendationsData{
		Places: places,
		Reason: resp.Reason,
	}
}

// round4 rounds to four decimals for metric display.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
