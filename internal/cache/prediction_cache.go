package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// predictionEntry is the cached form of a prediction result.
type predictionEntry struct {
	Predictions []models.Prediction `json:"predictions"`
	CachedAt    time.Time           `json:"cachedAt"`
}

// PredictionCache stores prediction results keyed by the SHA-256 of the
// uploaded file, so re-uploading identical data skips the predictor.
type PredictionCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewPredictionCache creates a new PredictionCache.
func NewPredictionCache(redis *RedisClient, ttl time.Duration) *PredictionCache {
	return &PredictionCache{redis: redis, ttl: ttl}
}

func (c *PredictionCache) key(sha256 string) string {
	return fmt.Sprintf("prediction:file:%s", sha256)
}

// Get returns cached predictions or utils.ErrCacheMiss.
func (c *PredictionCache) Get(ctx context.Context, sha256 string) ([]models.Prediction, error) {
	raw, err := c.redis.Get(ctx, c.key(sha256))
	if err != nil {
		return nil, err
	}
	var entry predictionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached predictions: %w", err)
	}
	return entry.Predictions, nil
}

// Set caches predictions for the file hash.
func (c *PredictionCache) Set(ctx context.Context, sha256 string, predictions []models.Prediction) error {
	data, err := json.Marshal(predictionEntry{Predictions: predictions, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal predictions: %w", err)
	}
	return c.redis.Set(ctx, c.key(sha256), data, c.ttl)
}

// Invalidate drops the cached entry for the file hash.
func (c *PredictionCache) Invalidate(ctx context.Context, sha256 string) error {
	return c.redis.Delete(ctx, c.key(sha256))
}
