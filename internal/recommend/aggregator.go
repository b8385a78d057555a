// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Aggregator merges the three behavioral feeds into deduplicated training
// signals on a shared 0-5 weight scale.
type Aggregator struct {
	provider DataProvider
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator over the given data provider.
func NewAggregator(provider DataProvider, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		provider: provider,
		logger:   logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate collects review, favorite, and search signals and deduplicates
// them by (account, place), keeping the maximum weight. A user who rated a
// place 2.0 and also favorited it contributes a single 5.0 signal: the
// strongest expression of interest wins.
//
// Output order is unspecified; output uniqueness per (account, place) is
// guaranteed.
func (a *Aggregator) Aggregate(ctx context.Context) ([]Signal, error) {
	ratings, err := a.provider.GetRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	favorites, err := a.provider.GetFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	searchSignals, err := a.searchSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load search signals: %w", err)
	}

	type key struct {
		account int
		place   int
	}

	best := make(map[key]float64, len(ratings)+len(favorites)+len(searchSignals))
	record := func(account, place int, weight float64) {
		k := key{account: account, place: place}
		if current, ok := best[k]; !ok || weight > current {
			best[k] = weight
		}
	}

	for _, r := range ratings {
		record(r.AccountID, r.PlaceID, r.Value)
	}
	for _, f := range favorites {
		record(f.AccountID, f.PlaceID, WeightFavorite)
	}
	for _, s := range searchSignals {
		record(s.AccountID, s.PlaceID, s.Weight)
	}

	signals := make([]Signal, 0, len(best))
	for k, weight := range best {
		signals = append(signals, Signal{
			AccountID: k.account,
			PlaceID:   k.place,
			Weight:    weight,
		})
	}

	a.logger.Debug().
		Int("ratings", len(ratings)).
		Int("favorites", len(favorites)).
		Int("search_matches", len(searchSignals)).
		Int("unique_signals", len(signals)).
		Msg("Aggregated training signals")

	return signals, nil
}

// searchSignals converts search history into place signals by substring
// matching each keyword against place names, categories, and addresses.
func (a *Aggregator) searchSignals(ctx context.Context) ([]Signal, error) {
	histories, err := a.provider.GetSearchHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load search history: %w", err)
	}
	if len(histories) == 0 {
		return nil, nil
	}

	places, err := a.provider.GetPlaceIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("load place index: %w", err)
	}

	// Pre-lower the catalog once; the same places are matched against every
	// keyword.
	type loweredPlace struct {
		placeID  int
		name     string
		category string
		address  string
	}
	lowered := make([]loweredPlace, len(places))
	for i, p := range places {
		lowered[i] = loweredPlace{
			placeID:  p.PlaceID,
			name:     strings.ToLower(p.Name),
			category: strings.ToLower(p.Category),
			address:  strings.ToLower(p.Address),
		}
	}

	var signals []Signal
	for _, h := range histories {
		if strings.TrimSpace(h.Keyword) == "" || utf8.RuneCountInString(h.Keyword) < MinKeywordLength {
			continue
		}

		k := strings.TrimSpace(strings.ToLower(h.Keyword))

		for _, p := range lowered {
			if strings.Contains(p.name, k) ||
				strings.Contains(p.category, k) ||
				strings.Contains(p.address, k) {
				signals = append(signals, Signal{
					AccountID: h.AccountID,
					PlaceID:   p.placeID,
					Weight:    WeightSearchMatch,
				})
			}
		}
	}

	return signals, nil
}
