// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package metrics provides Prometheus instrumentation for the recommendation
// path: request throughput by ranking reason, training runs and durations,
// and the state of the published model.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts served recommendation responses by the
	// ranking path that produced them (top_rated, top_rated_nearby,
	// ai_personalized, ai_personalized_nearby).
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placewise_recommendations_total",
			Help: "Total number of recommendation responses by reason",
		},
		[]string{"reason"},
	)

	// RecommendationDuration tracks end-to-end recommendation latency.
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placewise_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TrainingRuns counts training runs by outcome: trained, skipped
	// (insufficient data), or failed.
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placewise_training_runs_total",
			Help: "Total number of model training runs by outcome",
		},
		[]string{"outcome"},
	)

	// TrainingDuration tracks how long training runs take.
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placewise_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// ModelSignals is the deduplicated signal count of the published model.
	ModelSignals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "placewise_model_signals",
			Help: "Number of deduplicated signals the published model was trained on",
		},
	)

	// ModelTrainedTimestamp is when the published model was trained.
	ModelTrainedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "placewise_model_trained_timestamp_seconds",
			Help: "Unix timestamp of the published model's training time",
		},
	)
)

// Training run outcomes.
const (
	OutcomeTrained = "trained"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// RecordRecommendation records one served recommendation response.
func RecordRecommendation(reason string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(reason).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordTrainingRun records the outcome and duration of a training run.
func RecordTrainingRun(outcome string, duration time.Duration) {
	TrainingRuns.WithLabelValues(outcome).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordPublishedModel updates the model gauges after a publish.
func RecordPublishedModel(signalCount int, trainedAt time.Time) {
	ModelSignals.Set(float64(signalCount))
	ModelTrainedTimestamp.Set(float64(trainedAt.Unix()))
}
