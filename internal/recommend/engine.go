// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"

	"github.com/rs/zerolog"
)

// Engine selects candidate places, ranks them with the published model, and
// falls back to a top-rated ranking when personalization has nothing to say.
type Engine struct {
	provider  DataProvider
	predictor *Predictor
	logger    zerolog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(provider DataProvider, predictor *Predictor, logger zerolog.Logger) *Engine {
	return &Engine{
		provider:  provider,
		predictor: predictor,
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// Recommend returns up to MaxResults ranked places for the request.
//
// Candidates come from a flat ±NearbyRange degree bounding box when the
// request carries coordinates, otherwise from the TopReviewedLimit most
// reviewed places. Authenticated requests are scored with the published
// model; if any candidate clears RelevanceFloor the personalized top
// MaxResults is returned, otherwise (and for anonymous requests) the
// candidates are ranked by average rating with review count as tie-break.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	candidates, err := e.candidates(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.AccountID != 0 && len(candidates) > 0 {
		if resp, ok := e.personalized(req, candidates); ok {
			return resp, nil
		}
	}

	return e.topRated(req, candidates), nil
}

// candidates loads the candidate pool for the request.
func (e *Engine) candidates(ctx context.Context, req Request) ([]Candidate, error) {
	if req.HasLocation {
		candidates, err := e.provider.GetCandidatesNearby(ctx, req.Lat, req.Lng, NearbyRange)
		if err != nil {
			return nil, fmt.Errorf("load nearby candidates: %w", err)
		}
		return candidates, nil
	}

	candidates, err := e.provider.GetTopReviewedCandidates(ctx, TopReviewedLimit)
	if err != nil {
		return nil, fmt.Errorf("load top reviewed candidates: %w", err)
	}
	return candidates, nil
}

// personalized scores every candidate with the published model. It returns
// ok=false when no candidate clears the relevance floor, which means the
// model has nothing useful to say about this user and the caller should fall
// back to the top-rated ranking.
func (e *Engine) personalized(req Request, candidates []Candidate) (*Response, bool) {
	type scored struct {
		candidate Candidate
		score     float64
	}

	predictions := make([]scored, len(candidates))
	relevant := false
	for i, c := range candidates {
		score := e.predictor.Predict(req.AccountID, c.PlaceID)
		predictions[i] = scored{candidate: c, score: score}
		if score > RelevanceFloor {
			relevant = true
		}
	}

	if !relevant {
		return nil, false
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].score > predictions[j].score
	})

	n := len(predictions)
	if n > MaxResults {
		n = MaxResults
	}

	results := make([]Recommendation, n)
	for i := 0; i < n; i++ {
		results[i] = enrich(predictions[i].candidate, predictions[i].score)
	}

	reason := ReasonPersonalized
	if req.HasLocation {
		reason = ReasonPersonalizedNearby
	}

	return &Response{Results: results, Reason: reason}, true
}

// topRated ranks candidates by average review rating descending, breaking
// ties by review count. Places without reviews sort with rating 0; their
// stored fallback rating affects display only, not ordering.
func (e *Engine) topRated(req Request, candidates []Candidate) *Response {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AvgRating != ranked[j].AvgRating {
			return ranked[i].AvgRating > ranked[j].AvgRating
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})

	n := len(ranked)
	if n > MaxResults {
		n = MaxResults
	}

	results := make([]Recommendation, n)
	for i := 0; i < n; i++ {
		results[i] = enrich(ranked[i], 0)
	}

	reason := ReasonTopRated
	if req.HasLocation {
		reason = ReasonTopRatedNearby
	}

	return &Response{Results: results, Reason: reason}
}

// enrich converts a candidate into a response entry with the resolved
// provider identifier, display rating, and image URL.
func enrich(c Candidate, score float64) Recommendation {
	return Recommendation{
		PlaceID:     c.PlaceID,
		Name:        c.Name,
		Address:     c.Address,
		Category:    c.Category,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		ProviderID:  providerID(c),
		Rating:      displayRating(c),
		ReviewCount: c.ReviewCount,
		ImageURL:    imageURL(c.Category),
		Score:       score,
	}
}

// providerID resolves the public place identifier. Imported places expose
// their upstream provider ID behind a short provider prefix; supplier-created
// places are tagged internal.
func providerID(c Candidate) string {
	switch c.Provider {
	case "":
		return fmt.Sprintf("internal_%d", c.PlaceID)
	case "foursquare":
		return "fsq_" + c.ProviderPlaceID
	case "osm":
		return "osm_" + c.ProviderPlaceID
	default:
		return c.Provider + "_" + c.ProviderPlaceID
	}
}

// displayRating is the mean of non-deleted reviews rounded to one decimal,
// falling back to the stored rating for places without reviews.
func displayRating(c Candidate) float64 {
	if c.ReviewCount > 0 {
		return math.Round(c.AvgRating*10) / 10
	}
	return c.StoredRating
}

// imageURL synthesizes a category-themed placeholder image URL.
func imageURL(category string) string {
	if category == "" {
		category = "travel"
	}
	return "https://loremflickr.com/400/300/" + url.PathEscape(category)
}
