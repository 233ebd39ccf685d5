package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// Predictor turns an uploaded sales file into product demand predictions.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error)
}

// mockDemand holds the base demand and jitter span for each mock product.
var mockDemand = []struct {
	base   float64
	jitter float64
}{
	{120, 50},
	{100, 40},
	{85, 30},
	{70, 25},
	{55, 20},
}

// MockPredictor returns five synthetic predictions after a fixed delay. It
// stands in for the forecasting backend in development.
type MockPredictor struct {
	delay time.Duration
	rand  func() float64
}

// NewMockPredictor constructs a MockPredictor.
func NewMockPredictor(delay time.Duration) *MockPredictor {
	return &MockPredictor{delay: delay, rand: rand.Float64}
}

func (p *MockPredictor) Name() string { return "mock" }

// Predict waits for the configured delay, honouring ctx, and returns
// Product 1..5 with jittered demand.
func (p *MockPredictor) Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error) {
	if file.IsEmpty() {
		return nil, errors.New("empty file")
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	out := make([]models.Prediction, len(mockDemand))
	for i, d := range mockDemand {
		out[i] = models.Prediction{
			ProductID:       strconv.Itoa(i + 1),
			ProductName:     fmt.Sprintf("Product %d", i+1),
			PredictedDemand: d.base + p.rand()*d.jitter,
		}
	}
	return out, nil
}

// PredictionStore caches predictions by file content hash. Get returns
// utils.ErrCacheMiss when no entry exists.
type PredictionStore interface {
	Get(ctx context.Context, sha256 string) ([]models.Prediction, error)
	Set(ctx context.Context, sha256 string, predictions []models.Prediction) error
	Invalidate(ctx context.Context, sha256 string) error
}

// CachedPredictor serves repeated uploads of the same file from a cache.
// Cache failures are logged and fall through to the wrapped predictor.
// Only results that pass validatePredictions are cached; an invalid entry
// already in the store is dropped and recomputed.
type CachedPredictor struct {
	next  Predictor
	store PredictionStore
}

// NewCachedPredictor wraps next with a result cache.
func NewCachedPredictor(next Predictor, store PredictionStore) *CachedPredictor {
	return &CachedPredictor{next: next, store: store}
}

func (p *CachedPredictor) Name() string { return p.next.Name() }

func (p *CachedPredictor) Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error) {
	if file.SHA256 != "" {
		cached, err := p.store.Get(ctx, file.SHA256)
		switch {
		case err == nil && validatePredictions(cached) == nil:
			log.Debug().Str("sha256", file.SHA256).Msg("prediction cache hit")
			return cached, nil
		case err == nil:
			log.Warn().Str("sha256", file.SHA256).Msg("dropping invalid cached predictions")
			if err := p.store.Invalidate(ctx, file.SHA256); err != nil {
				log.Warn().Err(err).Str("sha256", file.SHA256).Msg("prediction cache invalidate failed")
			}
		case !errors.Is(err, utils.ErrCacheMiss):
			log.Warn().Err(err).Str("sha256", file.SHA256).Msg("prediction cache read failed")
		}
	}

	predictions, err := p.next.Predict(ctx, file)
	if err != nil {
		return nil, err
	}
	if err := validatePredictions(predictions); err != nil {
		return nil, err
	}

	if file.SHA256 != "" {
		if err := p.store.Set(ctx, file.SHA256, predictions); err != nil {
			log.Warn().Err(err).Str("sha256", file.SHA256).Msg("prediction cache write failed")
		}
	}
	return predictions, nil
}

// FileArchiver stores a copy of an uploaded file.
type FileArchiver interface {
	Archive(ctx context.Context, file *models.UploadedFile) (string, error)
}

// ArchivingPredictor keeps a copy of every file sent for prediction. A failed
// archive never blocks the prediction.
type ArchivingPredictor struct {
	next     Predictor
	archiver FileArchiver
}

// NewArchivingPredictor wraps next with an archiver.
func NewArchivingPredictor(next Predictor, archiver FileArchiver) *ArchivingPredictor {
	return &ArchivingPredictor{next: next, archiver: archiver}
}

func (p *ArchivingPredictor) Name() string { return p.next.Name() }

func (p *ArchivingPredictor) Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error) {
	if key, err := p.archiver.Archive(ctx, file); err != nil {
		log.Warn().Err(err).Str("file", file.Name).Msg("failed to archive upload")
	} else if key != "" {
		log.Debug().Str("file", file.Name).Str("key", key).Msg("upload archived")
	}
	return p.next.Predict(ctx, file)
}
