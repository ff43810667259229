package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const hierarchyKeyPrefix = "hierarchy:company:"

// CompanyHierarchyCache is a read-through Redis cache over the company
// repository. Split calculation hits the hierarchy once per settlement,
// so company nodes are cached with a short TTL and invalidated on writes.
type CompanyHierarchyCache struct {
	client    *redis.Client
	companies organization.CompanyRepository
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCompanyHierarchyCache creates a read-through hierarchy cache
func NewCompanyHierarchyCache(client *redis.Client, companies organization.CompanyRepository, ttl time.Duration, logger *zap.Logger) *CompanyHierarchyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CompanyHierarchyCache{
		client:    client,
		companies: companies,
		ttl:       ttl,
		logger:    logger,
	}
}

// Lookup returns the hierarchy node for a company, reading through to the
// repository on a cache miss. Cache failures degrade to repository reads.
func (c *CompanyHierarchyCache) Lookup(ctx context.Context, companyID uuid.UUID) (*organization.CompanyNode, error) {
	key := hierarchyKeyPrefix + companyID.String()

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var node organization.CompanyNode
		if err := json.Unmarshal(data, &node); err == nil {
			return &node, nil
		}
		c.logger.Warn("Corrupt hierarchy cache entry, falling through",
			zap.String("company_id", companyID.String()))
	} else if err != redis.Nil {
		c.logger.Warn("Hierarchy cache read failed, falling through",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
	}

	company, err := c.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	node := &organization.CompanyNode{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Type:        company.Type,
		ParentID:    company.ParentID,
		IsActive:    company.IsActive,
	}

	if data, err := json.Marshal(node); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Hierarchy cache write failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}

	return node, nil
}

// Invalidate drops the cached node for a company
func (c *CompanyHierarchyCache) Invalidate(ctx context.Context, companyID uuid.UUID) {
	key := hierarchyKeyPrefix + companyID.String()
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Hierarchy cache invalidation failed",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
	}
}
