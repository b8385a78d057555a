// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrTrainingInProgress is returned when Train is called while another
// training run is active.
var ErrTrainingInProgress = errors.New("training already in progress")

// ErrTrainingDiverged is returned when SGD produced non-finite factors.
// The previously published model stays active.
var ErrTrainingDiverged = errors.New("training diverged: non-finite factors")

// TrainerConfig contains training hyperparameters.
type TrainerConfig struct {
	// Rank is the latent factor dimensionality. Default: 100.
	Rank int

	// Epochs is the number of SGD passes over the training split. Default: 50.
	Epochs int

	// LearningRate is the SGD step size. Default: 0.01.
	LearningRate float64

	// Regularization is the L2 penalty on factor magnitudes. Default: 0.05.
	Regularization float64

	// MinSignals is the minimum deduplicated signal count required to train.
	// Default: 20.
	MinSignals int

	// Seed fixes the random source for the split and factor initialization.
	// 0 = time-seeded.
	Seed int64
}

// DefaultTrainerConfig returns default training hyperparameters.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Rank:           100,
		Epochs:         50,
		LearningRate:   0.01,
		Regularization: 0.05,
		MinSignals:     20,
		Seed:           0,
	}
}

// testFraction is the share of signals held out for evaluation.
const testFraction = 0.2

// ModelStore persists trained models. Implemented by storage.Store.
type ModelStore interface {
	Save(ctx context.Context, model interface{}) error
}

// Trainer fits matrix-factorization models over the aggregated signals and
// publishes them to a Predictor.
type Trainer struct {
	config     TrainerConfig
	aggregator *Aggregator
	store      ModelStore
	predictor  *Predictor
	logger     zerolog.Logger

	// trainMu serializes training runs. Train never blocks waiting for it;
	// a second concurrent call fails fast with ErrTrainingInProgress.
	trainMu sync.Mutex
}

// NewTrainer creates a trainer. Zero or negative config values fall back to
// defaults.
func NewTrainer(cfg TrainerConfig, aggregator *Aggregator, store ModelStore, predictor *Predictor, logger zerolog.Logger) *Trainer {
	def := DefaultTrainerConfig()
	if cfg.Rank <= 0 {
		cfg.Rank = def.Rank
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.MinSignals <= 0 {
		cfg.MinSignals = def.MinSignals
	}

	return &Trainer{
		config:     cfg,
		aggregator: aggregator,
		store:      store,
		predictor:  predictor,
		logger:     logger.With().Str("component", "trainer").Logger(),
	}
}

// Train aggregates signals, fits a fresh model, evaluates it on a held-out
// 20% split, persists it, and publishes it to the predictor.
//
// With fewer than MinSignals deduplicated signals Train is a no-op: it
// returns zero metrics and a nil error, and the published model (if any)
// is left untouched. On any failure after that point the published model is
// likewise left untouched.
func (t *Trainer) Train(ctx context.Context) (Metrics, error) {
	if !t.trainMu.TryLock() {
		return Metrics{}, ErrTrainingInProgress
	}
	defer t.trainMu.Unlock()

	start := time.Now()

	signals, err := t.aggregator.Aggregate(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("aggregate signals: %w", err)
	}

	if len(signals) < t.config.MinSignals {
		t.logger.Info().
			Int("signals", len(signals)).
			Int("min_signals", t.config.MinSignals).
			Msg("Not enough signals to train, keeping current model")
		return Metrics{}, nil
	}

	seed := t.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // statistical sampling, not security

	trainSet, testSet := splitSignals(signals, testFraction, rng)

	model, err := t.fit(ctx, trainSet, rng)
	if err != nil {
		return Metrics{}, err
	}
	model.SignalCount = len(signals)

	metrics := evaluate(model, testSet)

	if err := t.store.Save(ctx, model); err != nil {
		return Metrics{}, fmt.Errorf("persist model: %w", err)
	}

	t.predictor.Publish(model)

	t.logger.Info().
		Int("signals", len(signals)).
		Int("train_size", len(trainSet)).
		Int("test_size", len(testSet)).
		Float64("rmse", metrics.RMSE).
		Float64("r_squared", metrics.RSquared).
		Dur("duration", time.Since(start)).
		Msg("Model trained and published")

	return metrics, nil
}

// splitSignals partitions signals into train and test sets. Each signal lands
// in the test set independently with probability testFraction.
func splitSignals(signals []Signal, fraction float64, rng *rand.Rand) (trainSet, testSet []Signal) {
	trainSet = make([]Signal, 0, len(signals))
	testSet = make([]Signal, 0, int(float64(len(signals))*fraction)+1)

	for _, s := range signals {
		if rng.Float64() < fraction {
			testSet = append(testSet, s)
		} else {
			trainSet = append(trainSet, s)
		}
	}
	return trainSet, testSet
}

// fit runs SGD matrix factorization on the training split.
//
// The objective is squared error with L2 regularization:
//
//	sum_{(a,p)} (w_ap - x_a . y_p)^2 + lambda * (||x_a||^2 + ||y_p||^2)
func (t *Trainer) fit(ctx context.Context, trainSet []Signal, rng *rand.Rand) (*Model, error) {
	rank := t.config.Rank
	lr := t.config.LearningRate
	lambda := t.config.Regularization

	model := &Model{
		Rank:         rank,
		AccountIndex: make(map[int]int),
		PlaceIndex:   make(map[int]int),
	}

	for _, s := range trainSet {
		if _, ok := model.AccountIndex[s.AccountID]; !ok {
			model.AccountIndex[s.AccountID] = len(model.AccountFactors)
			model.AccountFactors = append(model.AccountFactors, randomVector(rank, rng))
		}
		if _, ok := model.PlaceIndex[s.PlaceID]; !ok {
			model.PlaceIndex[s.PlaceID] = len(model.PlaceFactors)
			model.PlaceFactors = append(model.PlaceFactors, randomVector(rank, rng))
		}
	}

	// Index the training pairs once; epochs iterate in shuffled order.
	order := rng.Perm(len(trainSet))

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, idx := range order {
			s := trainSet[idx]
			ai := model.AccountIndex[s.AccountID]
			pi := model.PlaceIndex[s.PlaceID]

			accountVec := model.AccountFactors[ai]
			placeVec := model.PlaceFactors[pi]

			var pred float64
			for f := 0; f < rank; f++ {
				pred += accountVec[f] * placeVec[f]
			}
			errTerm := s.Weight - pred

			for f := 0; f < rank; f++ {
				af := accountVec[f]
				pf := placeVec[f]
				accountVec[f] = af + lr*(errTerm*pf-lambda*af)
				placeVec[f] = pf + lr*(errTerm*af-lambda*pf)
			}
		}
	}

	if !model.finite() {
		return nil, ErrTrainingDiverged
	}

	model.TrainedAt = time.Now()
	return model, nil
}

// randomVector returns a small random initialization vector.
func randomVector(rank int, rng *rand.Rand) []float64 {
	v := make([]float64, rank)
	for f := range v {
		v[f] = 0.1 * (rng.Float64() - 0.5)
	}
	return v
}

// evaluate computes RMSE and R-squared of the model on the held-out split.
// Pairs unseen during training predict 0 and count against the model, which
// keeps the evaluation honest about cold-start behavior.
func evaluate(model *Model, testSet []Signal) Metrics {
	if len(testSet) == 0 {
		return Metrics{}
	}

	var sum float64
	for _, s := range testSet {
		sum += s.Weight
	}
	mean := sum / float64(len(testSet))

	var ssRes, ssTot float64
	for _, s := range testSet {
		pred := model.Predict(s.AccountID, s.PlaceID)
		ssRes += (s.Weight - pred) * (s.Weight - pred)
		ssTot += (s.Weight - mean) * (s.Weight - mean)
	}

	rmse := math.Sqrt(ssRes / float64(len(testSet)))

	// All held-out weights identical: R-squared is undefined, report 0.
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return Metrics{RMSE: rmse, RSquared: rSquared}
}
