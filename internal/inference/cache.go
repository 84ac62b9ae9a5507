package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

// Cache stores raw inference responses by key.
type Cache interface {
	GetCachedInference(ctx context.Context, key string) (string, bool, error)
	SetCachedInference(ctx context.Context, key, response string) error
}

// CacheKey derives the cache key for a model and prompt.
func CacheKey(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

type caching struct {
	inner Inferer
	cache Cache
	model string
}

// WithCache serves repeated prompts from cache. Only responses containing a
// decodable JSON object are stored, so a malformed answer is never replayed.
// Cache failures are logged and otherwise ignored.
func WithCache(inner Inferer, cache Cache, model string) Inferer {
	return &caching{inner: inner, cache: cache, model: model}
}

func (c *caching) Infer(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	key := CacheKey(c.model, prompt)

	cached, ok, err := c.cache.GetCachedInference(ctx, key)
	if err != nil {
		zap.L().Warn("inference: cache lookup failed", zap.Error(err))
	} else if ok {
		zap.L().Debug("inference: cache hit", zap.String("key", key))
		return cached, nil
	}

	text, err := c.inner.Infer(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}

	if _, decodeErr := DecodeObject(text); decodeErr == nil {
		if setErr := c.cache.SetCachedInference(ctx, key, text); setErr != nil {
			zap.L().Warn("inference: cache store failed", zap.Error(setErr))
		}
	}
	return text, nil
}
