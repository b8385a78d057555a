// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import "context"

// Signal weights assigned by the aggregator. Review signals carry the rating
// value itself (0-5), so all three sources live on the same scale.
const (
	// WeightFavorite is the weight of a favorited place (strong preference).
	WeightFavorite = 5.0

	// WeightSearchMatch is the weight of a place matched by a search keyword
	// (interest/curiosity).
	WeightSearchMatch = 3.5
)

const (
	// MinKeywordLength is the minimum search keyword length considered
	// meaningful. Shorter keywords match too broadly to carry signal.
	MinKeywordLength = 2

	// RelevanceFloor is the minimum predicted score at which the personalized
	// ranking is considered relevant. If no candidate clears it, the engine
	// falls back to the top-rated ranking.
	RelevanceFloor = 0.001

	// NearbyRange is the half-width in degrees of the flat bounding box used
	// for location-filtered candidates (roughly 20km at the equator). This is
	// a crude planar approximation, not a geodesic distance.
	NearbyRange = 0.2

	// MaxResults is the number of places returned per recommendation request.
	MaxResults = 10

	// TopReviewedLimit is the candidate pool size when no location is given.
	TopReviewedLimit = 100
)

// Reason tags explain which ranking path produced a response.
const (
	ReasonTopRated           = "top_rated"
	ReasonTopRatedNearby     = "top_rated_nearby"
	ReasonPersonalized       = "ai_personalized"
	ReasonPersonalizedNearby = "ai_personalized_nearby"
)

// Signal is one deduplicated (account, place) preference observation used for
// training. Weight is on the 0-5 rating scale.
type Signal struct {
	AccountID int
	PlaceID   int
	Weight    float64
}

// Rating is a review-derived raw signal: the user's actual rating of a place.
type Rating struct {
	AccountID int
	PlaceID   int
	Value     float64
}

// FavoriteEntry is a favorites-derived raw signal.
type FavoriteEntry struct {
	AccountID int
	PlaceID   int
}

// SearchEntry is one recorded search keyword for an account.
type SearchEntry struct {
	AccountID int
	Keyword   string
}

// PlaceSummary is the lightweight place projection used for keyword matching.
type PlaceSummary struct {
	PlaceID  int
	Name     string
	Category string
	Address  string
}

// Candidate is a place eligible for recommendation, carrying the aggregate
// review stats and provider mapping needed for ranking and enrichment.
type Candidate struct {
	PlaceID   int
	Name      string
	Category  string
	Address   string
	Latitude  float64
	Longitude float64

	// AvgRating is the mean rating over non-deleted reviews, 0 if none.
	AvgRating   float64
	ReviewCount int

	// StoredRating is the supplier/import rating used for display when the
	// place has no reviews.
	StoredRating float64

	// Provider and ProviderPlaceID come from the external place mapping and
	// are empty for internally created places.
	Provider        string
	ProviderPlaceID string
}

// Recommendation is one enriched entry of a recommendation response.
type Recommendation struct {
	PlaceID     int
	Name        string
	Address     string
	Category    string
	Latitude    float64
	Longitude   float64
	ProviderID  string
	Rating      float64
	ReviewCount int
	ImageURL    string

	// Score is the model prediction that ranked this entry. Zero on the
	// top-rated fallback path.
	Score float64
}

// Request is a recommendation query. AccountID 0 means anonymous.
// Lat/Lng are only meaningful when HasLocation is true.
type Request struct {
	AccountID   int
	HasLocation bool
	Lat         float64
	Lng         float64
}

// Response is a ranked list of recommendations and the reason tag describing
// which ranking path produced it.
type Response struct {
	Results []Recommendation
	Reason  string
}

// Metrics reports model quality on the held-out evaluation split.
type Metrics struct {
	// RMSE is the root mean squared error. Lower is better.
	RMSE float64

	// RSquared is the coefficient of determination. Closer to 1 is better.
	RSquared float64
}

// DataProvider supplies the snapshot feeds and candidate queries the engine
// needs. Implementations must exclude soft-deleted places and reviews.
type DataProvider interface {
	// GetRatings returns all non-deleted review ratings.
	GetRatings(ctx context.Context) ([]Rating, error)

	// GetFavorites returns all favorite marks.
	GetFavorites(ctx context.Context) ([]FavoriteEntry, error)

	// GetSearchHistory returns all recorded search keywords.
	GetSearchHistory(ctx context.Context) ([]SearchEntry, error)

	// GetPlaceIndex returns the non-deleted place catalog projection used
	// for keyword matching.
	GetPlaceIndex(ctx context.Context) ([]PlaceSummary, error)

	// GetCandidatesNearby returns non-deleted places inside the flat
	// bounding box [lat-rang, lat+rang] x [lng-rang, lng+rang], inclusive.
	GetCandidatesNearby(ctx context.Context, lat, lng, rang float64) ([]Candidate, error)

	// GetTopReviewedCandidates returns the limit non-deleted places with the
	// most reviews.
	GetTopReviewedCandidates(ctx context.Context, limit int) ([]Candidate, error)
}
