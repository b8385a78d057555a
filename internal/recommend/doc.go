// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package recommend implements the personalized place-recommendation engine.
//
// The engine learns user taste from three behavioral signals (reviews,
// favorites, and search history), fits a matrix-factorization model over the
// aggregated signals, and serves ranked place recommendations with a
// popularity fallback for anonymous users or users the model knows nothing
// about.
//
// # Architecture
//
//	Aggregator  - merges reviews/favorites/search history into weighted signals
//	Trainer     - fits the latent-factor model and evaluates it on a held-out split
//	Predictor   - serves score lookups from the currently published model
//	Engine      - candidate selection, ranking, fallback, and enrichment
//	storage     - durable model persistence (gob + gzip + checksum)
//
// Training and serving are decoupled: the Trainer fits a new model off to the
// side and atomically publishes it to the Predictor only on success, so
// request handling is never blocked by training and a failed run can never
// corrupt the serving path.
package recommend
