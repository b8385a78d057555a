// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/placewise/placewise/internal/recommend"
)

// queryTimeout bounds every recommendation feed query.
const queryTimeout = 30 * time.Second

// GetRatings returns all non-deleted review ratings as raw training signals.
func (db *DB) GetRatings(ctx context.Context) ([]recommend.Rating, error) {
	query := `
		SELECT account_id, place_id, rating
		FROM reviews
		WHERE NOT is_deleted
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.AccountID, &r.PlaceID, &r.Value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return ratings, nil
}

// GetFavorites returns all favorite marks.
func (db *DB) GetFavorites(ctx context.Context) ([]recommend.FavoriteEntry, error) {
	query := `
		SELECT account_id, place_id
		FROM favorites
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []recommend.FavoriteEntry
	for rows.Next() {
		var f recommend.FavoriteEntry
		if err := rows.Scan(&f.AccountID, &f.PlaceID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// GetSearchHistory returns all recorded search keywords.
func (db *DB) GetSearchHistory(ctx context.Context) ([]recommend.SearchEntry, error) {
	query := `
		SELECT account_id, keyword
		FROM search_histories
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query search history: %w", err)
	}
	defer rows.Close()

	var entries []recommend.SearchEntry
	for rows.Next() {
		var e recommend.SearchEntry
		if err := rows.Scan(&e.AccountID, &e.Keyword); err != nil {
			return nil, fmt.Errorf("scan search entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search history: %w", err)
	}

	return entries, nil
}

// GetPlaceIndex returns the non-deleted place catalog projection used for
// search keyword matching.
func (db *DB) GetPlaceIndex(ctx context.Context) ([]recommend.PlaceSummary, error) {
	query := `
		SELECT place_id, name, COALESCE(category, ''), COALESCE(address, '')
		FROM places
		WHERE NOT is_deleted
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query place index: %w", err)
	}
	defer rows.Close()

	var places []recommend.PlaceSummary
	for rows.Next() {
		var p recommend.PlaceSummary
		if err := rows.Scan(&p.PlaceID, &p.Name, &p.Category, &p.Address); err != nil {
			return nil, fmt.Errorf("scan place summary: %w", err)
		}
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate place index: %w", err)
	}

	return places, nil
}

// candidateSelect is the shared projection for candidate queries: place
// columns, review aggregates over non-deleted reviews, and one external
// provider mapping per place.
const candidateSelect = `
	SELECT
		p.place_id,
		p.name,
		COALESCE(p.category, ''),
		COALESCE(p.address, ''),
		p.latitude,
		p.longitude,
		COALESCE(r.avg_rating, 0),
		COALESCE(r.review_count, 0),
		COALESCE(p.rating, 0),
		COALESCE(m.provider, ''),
		COALESCE(m.provider_place_id, '')
	FROM places p
	LEFT JOIN (
		SELECT place_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		WHERE NOT is_deleted
		GROUP BY place_id
	) r ON r.place_id = p.place_id
	LEFT JOIN (
		SELECT place_id, provider, provider_place_id,
			ROW_NUMBER() OVER (PARTITION BY place_id ORDER BY provider, provider_place_id) AS rn
		FROM external_place_maps
	) m ON m.place_id = p.place_id AND m.rn = 1
	WHERE NOT p.is_deleted
`

// GetCandidatesNearby returns non-deleted places inside the flat bounding box
// around (lat, lng). BETWEEN is inclusive on both edges, so a place exactly
// rang degrees away is still a candidate.
func (db *DB) GetCandidatesNearby(ctx context.Context, lat, lng, rang float64) ([]recommend.Candidate, error) {
	query := candidateSelect + `
		AND p.latitude BETWEEN ? AND ?
		AND p.longitude BETWEEN ? AND ?
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, lat-rang, lat+rang, lng-rang, lng+rang)
	if err != nil {
		return nil, fmt.Errorf("query nearby candidates: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// GetTopReviewedCandidates returns the limit non-deleted places with the most
// non-deleted reviews.
func (db *DB) GetTopReviewedCandidates(ctx context.Context, limit int) ([]recommend.Candidate, error) {
	query := candidateSelect + `
		ORDER BY COALESCE(r.review_count, 0) DESC
		LIMIT ?
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top reviewed candidates: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// rowScanner abstracts *sql.Rows for candidate scanning.
type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanCandidates reads candidate rows from the shared projection.
func scanCandidates(rows rowScanner) ([]recommend.Candidate, error) {
	var candidates []recommend.Candidate
	for rows.Next() {
		var c recommend.Candidate
		if err := rows.Scan(
			&c.PlaceID,
			&c.Name,
			&c.Category,
			&c.Address,
			&c.Latitude,
			&c.Longitude,
			&c.AvgRating,
			&c.ReviewCount,
			&c.StoredRating,
			&c.Provider,
			&c.ProviderPlaceID,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

// Ensure interface compliance.
var _ recommend.DataProvider = (*DB)(nil)
