// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import "sync"

// Predictor serves score lookups from the currently published model.
//
// The mutex guards only the model reference, never the model contents: models
// are immutable after training, so readers holding a reference can score
// without any lock. Training fits a new model entirely off to the side and
// swaps it in via Publish, which is the only write path.
type Predictor struct {
	mu    sync.RWMutex
	model *Model
}

// NewPredictor creates a predictor with no model. Until a model is published
// every prediction is 0 and the engine serves the top-rated fallback.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict returns the predicted score for the (account, place) pair.
// Returns exactly 0 when no model is published or the pair is unknown.
func (p *Predictor) Predict(accountID, placeID int) float64 {
	p.mu.RLock()
	m := p.model
	p.mu.RUnlock()

	if m == nil {
		return 0
	}
	return m.Predict(accountID, placeID)
}

// Publish atomically replaces the current model. In-flight predictions keep
// using the model reference they already hold.
func (p *Predictor) Publish(m *Model) {
	p.mu.Lock()
	p.model = m
	p.mu.Unlock()
}

// Current returns the currently published model, or nil.
func (p *Predictor) Current() *Model {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

// HasModel reports whether a model has been published.
func (p *Predictor) HasModel() bool {
	return p.Current() != nil
}
