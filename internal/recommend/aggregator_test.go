// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
)

func signalsByKey(signals []Signal) map[[2]int]float64 {
	out := make(map[[2]int]float64, len(signals))
	for _, s := range signals {
		out[[2]int{s.AccountID, s.PlaceID}] = s.Weight
	}
	return out
}

func TestAggregator_Aggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ratings   []Rating
		favorites []FavoriteEntry
		searches  []SearchEntry
		places    []PlaceSummary
		want      map[[2]int]float64
	}{
		{
			name: "ratings carry their value",
			ratings: []Rating{
				{AccountID: 1, PlaceID: 10, Value: 4.0},
				{AccountID: 1, PlaceID: 11, Value: 2.5},
			},
			want: map[[2]int]float64{
				{1, 10}: 4.0,
				{1, 11}: 2.5,
			},
		},
		{
			name: "favorite outweighs a low rating for the same pair",
			ratings: []Rating{
				{AccountID: 1, PlaceID: 10, Value: 2.0},
			},
			favorites: []FavoriteEntry{
				{AccountID: 1, PlaceID: 10},
			},
			want: map[[2]int]float64{
				{1, 10}: WeightFavorite,
			},
		},
		{
			name: "perfect rating is not lowered by a search match",
			ratings: []Rating{
				{AccountID: 1, PlaceID: 10, Value: 5.0},
			},
			searches: []SearchEntry{
				{AccountID: 1, Keyword: "museum"},
			},
			places: []PlaceSummary{
				{PlaceID: 10, Name: "City Museum", Category: "museum", Address: "1 Main St"},
			},
			want: map[[2]int]float64{
				{1, 10}: 5.0,
			},
		},
		{
			name: "search match alone contributes its weight",
			searches: []SearchEntry{
				{AccountID: 2, Keyword: "beach"},
			},
			places: []PlaceSummary{
				{PlaceID: 20, Name: "North Beach", Category: "beach", Address: "Coast Rd"},
				{PlaceID: 21, Name: "Old Library", Category: "library", Address: "2 Oak St"},
			},
			want: map[[2]int]float64{
				{2, 20}: WeightSearchMatch,
			},
		},
		{
			name: "keyword matching is case-insensitive across name category and address",
			searches: []SearchEntry{
				{AccountID: 3, Keyword: "RIVER"},
				{AccountID: 3, Keyword: "Temple"},
				{AccountID: 3, Keyword: "oak st"},
			},
			places: []PlaceSummary{
				{PlaceID: 30, Name: "Riverside Park", Category: "park", Address: "Bank Rd"},
				{PlaceID: 31, Name: "Quiet Garden", Category: "temple grounds", Address: "Hill Ln"},
				{PlaceID: 32, Name: "Corner Cafe", Category: "cafe", Address: "12 Oak St"},
			},
			want: map[[2]int]float64{
				{3, 30}: WeightSearchMatch,
				{3, 31}: WeightSearchMatch,
				{3, 32}: WeightSearchMatch,
			},
		},
		{
			name: "blank and single-rune keywords are skipped",
			searches: []SearchEntry{
				{AccountID: 4, Keyword: ""},
				{AccountID: 4, Keyword: "   "},
				{AccountID: 4, Keyword: "a"},
			},
			places: []PlaceSummary{
				{PlaceID: 40, Name: "Alpha Arcade", Category: "arcade", Address: "A St"},
			},
			want: map[[2]int]float64{},
		},
		{
			name: "keyword with surrounding whitespace still matches",
			searches: []SearchEntry{
				{AccountID: 5, Keyword: "  castle  "},
			},
			places: []PlaceSummary{
				{PlaceID: 50, Name: "Hill Castle", Category: "landmark", Address: "Summit Way"},
			},
			want: map[[2]int]float64{
				{5, 50}: WeightSearchMatch,
			},
		},
		{
			name: "empty feeds produce no signals",
			want: map[[2]int]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &mockDataProvider{
				ratings:   tt.ratings,
				favorites: tt.favorites,
				searches:  tt.searches,
				places:    tt.places,
			}
			agg := NewAggregator(provider, zerolog.Nop())

			signals, err := agg.Aggregate(context.Background())
			if err != nil {
				t.Fatalf("Aggregate() error = %v, want nil", err)
			}

			got := signalsByKey(signals)
			if len(got) != len(signals) {
				t.Errorf("Aggregate() returned %d signals for %d unique pairs, want deduplicated output", len(signals), len(got))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Aggregate() = %d unique signals, want %d", len(got), len(tt.want))
			}
			for k, weight := range tt.want {
				if got[k] != weight {
					t.Errorf("Aggregate() weight for account %d place %d = %v, want %v", k[0], k[1], got[k], weight)
				}
			}
		})
	}
}

func TestAggregator_Aggregate_FeedErrors(t *testing.T) {
	t.Parallel()

	feedErr := errors.New("feed unavailable")

	tests := []struct {
		name     string
		provider *mockDataProvider
	}{
		{
			name:     "ratings feed fails",
			provider: &mockDataProvider{ratingsErr: feedErr},
		},
		{
			name:     "favorites feed fails",
			provider: &mockDataProvider{favoritesErr: feedErr},
		},
		{
			name: "search history feed fails",
			provider: &mockDataProvider{
				searchesErr: feedErr,
			},
		},
		{
			name: "place index feed fails",
			provider: &mockDataProvider{
				searches:  []SearchEntry{{AccountID: 1, Keyword: "museum"}},
				placesErr: feedErr,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			agg := NewAggregator(tt.provider, zerolog.Nop())

			signals, err := agg.Aggregate(context.Background())
			if !errors.Is(err, feedErr) {
				t.Errorf("Aggregate() error = %v, want wrapped %v", err, feedErr)
			}
			if signals != nil {
				t.Errorf("Aggregate() = %v, want nil on error", signals)
			}
		})
	}
}

func TestAggregator_Aggregate_PlaceIndexNotLoadedWithoutKeywords(t *testing.T) {
	t.Parallel()

	// With no search history there is nothing to match, so the place index
	// must not be touched even if it would fail.
	provider := &mockDataProvider{
		ratings:   []Rating{{AccountID: 1, PlaceID: 10, Value: 3.0}},
		placesErr: errors.New("place index unavailable"),
	}
	agg := NewAggregator(provider, zerolog.Nop())

	signals, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v, want nil", err)
	}
	if len(signals) != 1 {
		t.Fatalf("Aggregate() = %d signals, want 1", len(signals))
	}
	if signals[0].Weight != 3.0 {
		t.Errorf("Aggregate() weight = %v, want 3.0", signals[0].Weight)
	}
}

func TestAggregator_Aggregate_MultipleAccounts(t *testing.T) {
	t.Parallel()

	provider := &mockDataProvider{
		ratings: []Rating{
			{AccountID: 1, PlaceID: 10, Value: 4.0},
			{AccountID: 2, PlaceID: 10, Value: 1.0},
		},
		favorites: []FavoriteEntry{
			{AccountID: 2, PlaceID: 10},
		},
	}
	agg := NewAggregator(provider, zerolog.Nop())

	signals, err := agg.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v, want nil", err)
	}

	got := signalsByKey(signals)
	want := map[[2]int]float64{
		{1, 10}: 4.0,
		{2, 10}: WeightFavorite,
	}
	if len(got) != len(want) {
		// Sort for a readable failure message.
		sort.Slice(signals, func(i, j int) bool { return signals[i].AccountID < signals[j].AccountID })
		t.Fatalf("Aggregate() = %v, want %d signals", signals, len(want))
	}
	for k, weight := range want {
		if got[k] != weight {
			t.Errorf("Aggregate() weight for account %d place %d = %v, want %v", k[0], k[1], got[k], weight)
		}
	}
}
