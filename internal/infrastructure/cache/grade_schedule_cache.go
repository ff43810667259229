package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scheduleKeyPrefix = "policy:schedule:"

// GradeScheduleCache is a read-through Redis cache wrapping the policy
// repository. Every recount re-reads the policy's grade schedule, so
// policies are cached by ID and invalidated when saved through this
// decorator. Cache failures degrade to repository reads.
type GradeScheduleCache struct {
	client   *redis.Client
	policies policy.PolicyRepository
	ttl      time.Duration
	logger   *zap.Logger
}

// NewGradeScheduleCache creates a read-through policy cache
func NewGradeScheduleCache(client *redis.Client, policies policy.PolicyRepository, ttl time.Duration, logger *zap.Logger) *GradeScheduleCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &GradeScheduleCache{
		client:   client,
		policies: policies,
		ttl:      ttl,
		logger:   logger,
	}
}

// FindByID returns a policy, reading through to the repository on a miss
func (c *GradeScheduleCache) FindByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	key := scheduleKeyPrefix + id.String()

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var pol policy.Policy
		if err := json.Unmarshal(data, &pol); err == nil {
			return &pol, nil
		}
		c.logger.Warn("Corrupt policy cache entry, falling through",
			zap.String("policy_id", id.String()))
	} else if err != redis.Nil {
		c.logger.Warn("Policy cache read failed, falling through",
			zap.String("policy_id", id.String()),
			zap.Error(err))
	}

	pol, err := c.policies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pol == nil {
		return nil, nil
	}

	if data, err := json.Marshal(pol); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Policy cache write failed",
				zap.String("policy_id", id.String()),
				zap.Error(err))
		}
	}

	return pol, nil
}

// FindByCode delegates to the repository; code lookups are not cached
func (c *GradeScheduleCache) FindByCode(ctx context.Context, code string) (*policy.Policy, error) {
	return c.policies.FindByCode(ctx, code)
}

// FindAll delegates to the repository
func (c *GradeScheduleCache) FindAll(ctx context.Context, filter policy.PolicyFilter) ([]policy.Policy, error) {
	return c.policies.FindAll(ctx, filter)
}

// Save writes through to the repository and drops the cached entry
func (c *GradeScheduleCache) Save(ctx context.Context, pol *policy.Policy) error {
	if err := c.policies.Save(ctx, pol); err != nil {
		return err
	}
	c.Invalidate(ctx, pol.ID)
	return nil
}

// Invalidate drops the cached policy
func (c *GradeScheduleCache) Invalidate(ctx context.Context, policyID uuid.UUID) {
	key := scheduleKeyPrefix + policyID.String()
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Policy cache invalidation failed",
			zap.String("policy_id", policyID.String()),
			zap.Error(err))
	}
}
