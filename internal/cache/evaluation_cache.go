package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/config"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/redis/go-redis/v9"
)

const evaluationKeyPrefix = "planning:evaluation"

// EvaluationCache memoizes the evaluation of the current snapshot, keyed by
// its fingerprint. Storing an evaluation for a new fingerprint drops every
// earlier one.
type EvaluationCache interface {
	Get(ctx context.Context, fingerprint string) (*domain.Evaluation, bool, error)
	Set(ctx context.Context, eval *domain.Evaluation) error
	InvalidateAll(ctx context.Context) error
}

type redisEvaluationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type memoryEvaluationCache struct {
	mu   sync.RWMutex
	last *domain.Evaluation
}

type noopEvaluationCache struct{}

// NewEvaluationCache returns a redis backed cache when enabled and an
// in-process cache otherwise.
func NewEvaluationCache(cfg config.CacheConfig) (EvaluationCache, error) {
	if !cfg.Enabled {
		return NewMemoryEvaluationCache(), nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisEvaluationCache{
		client: client,
		ttl:    cacheTTL(cfg),
	}, nil
}

func NewMemoryEvaluationCache() EvaluationCache {
	return &memoryEvaluationCache{}
}

func NewNoopEvaluationCache() EvaluationCache {
	return &noopEvaluationCache{}
}

func (c *redisEvaluationCache) Get(ctx context.Context, fingerprint string) (*domain.Evaluation, bool, error) {
	payload, err := c.client.Get(ctx, evaluationKey(fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var eval domain.Evaluation
	if err := json.Unmarshal(payload, &eval); err != nil {
		return nil, false, fmt.Errorf("decode evaluation cache: %w", err)
	}

	return &eval, true, nil
}

func (c *redisEvaluationCache) Set(ctx context.Context, eval *domain.Evaluation) error {
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("encode evaluation cache: %w", err)
	}

	stale, err := scanKeys(ctx, c.client, evaluationKeyPrefix)
	if err != nil {
		return err
	}
	return replaceKeys(ctx, c.client, stale, evaluationKey(eval.Fingerprint), payload, c.ttl)
}

func (c *redisEvaluationCache) InvalidateAll(ctx context.Context) error {
	stale, err := scanKeys(ctx, c.client, evaluationKeyPrefix)
	if err != nil {
		return err
	}
	return replaceKeys(ctx, c.client, stale, "", nil, 0)
}

func (c *memoryEvaluationCache) Get(ctx context.Context, fingerprint string) (*domain.Evaluation, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil || c.last.Fingerprint != fingerprint {
		return nil, false, nil
	}
	return c.last, true, nil
}

func (c *memoryEvaluationCache) Set(ctx context.Context, eval *domain.Evaluation) error {
	c.mu.Lock()
	c.last = eval
	c.mu.Unlock()
	return nil
}

func (c *memoryEvaluationCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
	return nil
}

func (n *noopEvaluationCache) Get(ctx context.Context, fingerprint string) (*domain.Evaluation, bool, error) {
	return nil, false, nil
}

func (n *noopEvaluationCache) Set(ctx context.Context, eval *domain.Evaluation) error {
	return nil
}

func (n *noopEvaluationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func evaluationKey(fingerprint string) string {
	return fmt.Sprintf("%s:%s", evaluationKeyPrefix, fingerprint)
}
