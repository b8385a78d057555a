// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import (
	"math"
	"time"
)

// Model is a trained matrix-factorization model. It is immutable after
// training: the Trainer builds a fresh Model per run and publishes it to the
// Predictor, so reads need no locking once a reference is obtained.
type Model struct {
	// Rank is the latent factor dimensionality.
	Rank int

	// AccountIndex maps account ID to a row of AccountFactors.
	AccountIndex map[int]int

	// PlaceIndex maps place ID to a row of PlaceFactors.
	PlaceIndex map[int]int

	// AccountFactors is the user latent matrix (numAccounts x Rank).
	AccountFactors [][]float64

	// PlaceFactors is the place latent matrix (numPlaces x Rank).
	PlaceFactors [][]float64

	// TrainedAt records when training finished.
	TrainedAt time.Time

	// SignalCount is the number of deduplicated signals the model was fit on.
	SignalCount int
}

// Predict returns the predicted preference score of the account for the
// place. Accounts or places the model has never seen score 0.
func (m *Model) Predict(accountID, placeID int) float64 {
	ai, ok := m.AccountIndex[accountID]
	if !ok {
		return 0
	}
	pi, ok := m.PlaceIndex[placeID]
	if !ok {
		return 0
	}

	accountVec := m.AccountFactors[ai]
	placeVec := m.PlaceFactors[pi]

	var score float64
	for f := range accountVec {
		score += accountVec[f] * placeVec[f]
	}
	return score
}

// finite reports whether every factor in the model is a finite number.
// SGD can diverge on pathological data; a model containing NaN or Inf must
// never be published.
func (m *Model) finite() bool {
	for _, row := range m.AccountFactors {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	for _, row := range m.PlaceFactors {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
