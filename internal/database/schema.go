// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

/*
schema.go - Database Schema Management

Tables:
  - places: Tourism place catalog (supplier-created and provider-imported)
  - reviews: User ratings of places (0-5, soft-deleted rows excluded from feeds)
  - favorites: Places users have saved
  - search_histories: Recorded search keywords per account
  - external_place_maps: Links from internal places to upstream provider records

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements. The schema is
bootstrapped on every open with IF NOT EXISTS, so a fresh deployment needs no
migration step.

Index Strategy:
Indexes cover the recommendation feed access paths: non-deleted review
aggregation per place, favorites and search history per account, and the
latitude/longitude bounding-box candidate query.
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_place_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_review_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_search_id START 1`,

		`CREATE TABLE IF NOT EXISTS places (
			place_id INTEGER PRIMARY KEY DEFAULT nextval('seq_place_id'),
			name TEXT NOT NULL,
			category TEXT,
			address TEXT,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			rating DOUBLE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			review_id INTEGER PRIMARY KEY DEFAULT nextval('seq_review_id'),
			place_id INTEGER NOT NULL,
			account_id INTEGER NOT NULL,
			rating DOUBLE NOT NULL,
			comment TEXT,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			account_id INTEGER NOT NULL,
			place_id INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (account_id, place_id)
		)`,

		`CREATE TABLE IF NOT EXISTS search_histories (
			search_id INTEGER PRIMARY KEY DEFAULT nextval('seq_search_id'),
			account_id INTEGER NOT NULL,
			keyword TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS external_place_maps (
			place_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			provider_place_id TEXT NOT NULL,
			PRIMARY KEY (place_id, provider)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_places_location ON places (latitude, longitude)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_place ON reviews (place_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_account ON reviews (account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_search_account ON search_histories (account_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
