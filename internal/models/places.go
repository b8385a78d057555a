// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package models defines the domain and API models shared across Placewise.
package models

import "time"

// Place is a tourism place in the catalog. Places are either created by
// suppliers (internal) or imported from an external provider, in which case a
// row in external_place_maps links back to the provider's identifier.
type Place struct {
	PlaceID   int       `json:"place_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	// Rating is the supplier- or import-provided rating used when a place
	// has no reviews yet.
	Rating    float64   `json:"rating"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a user's rating of a place on a 0-5 scale.
type Review struct {
	ReviewID  int       `json:"review_id"`
	PlaceID   int       `json:"place_id"`
	AccountID int       `json:"account_id"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite marks a place a user has saved.
type Favorite struct {
	AccountID int       `json:"account_id"`
	PlaceID   int       `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchHistory is one recorded search keyword for a user.
type SearchHistory struct {
	SearchID  int       `json:"search_id"`
	AccountID int       `json:"account_id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

// ExternalPlaceMap links an internal place to its upstream provider record.
type ExternalPlaceMap struct {
	PlaceID         int    `json:"place_id"`
	Provider        string `json:"provider"`
	ProviderPlaceID string `json:"provider_place_id"`
}

// RecommendedPlace is one entry in a recommendations response, enriched with
// the resolved provider identifier, display rating, and image URL.
type RecommendedPlace struct {
	PlaceID     int     `json:"place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ProviderID  string  `json:"provider_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url"`
}

// RecommendationsData is the data payload of GET /api/v1/recommendations.
// Reason is one of: top_rated, top_rated_nearby, ai_personalized,
// ai_personalized_nearby.
type RecommendationsData struct {
	Places []RecommendedPlace `json:"places"`
	Reason string             `json:"reason"`
}

// TrainMetrics reports model quality on the held-out evaluation split,
// rounded to four decimals for display.
type TrainMetrics struct {
	RMSE     float64 `json:"rmse"`
	RSquared float64 `json:"r_squared"`
}

// TrainData is the data payload of POST /api/v1/recommendations/train.
type TrainData struct {
	Message string       `json:"message"`
	Metrics TrainMetrics `json:"metrics"`
	Note    string       `json:"note"`
}
