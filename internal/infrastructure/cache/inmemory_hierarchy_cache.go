package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
)

// InMemoryHierarchyCache is a process-local read-through cache over the
// company repository. Suitable for single-instance deployments and tests;
// distributed deployments should use CompanyHierarchyCache instead.
type InMemoryHierarchyCache struct {
	companies organization.CompanyRepository
	ttl       time.Duration

	mu      sync.RWMutex
	entries map[uuid.UUID]hierarchyEntry
}

type hierarchyEntry struct {
	node      *organization.CompanyNode
	expiresAt time.Time
}

// NewInMemoryHierarchyCache creates a process-local hierarchy cache
func NewInMemoryHierarchyCache(companies organization.CompanyRepository, ttl time.Duration) *InMemoryHierarchyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InMemoryHierarchyCache{
		companies: companies,
		ttl:       ttl,
		entries:   make(map[uuid.UUID]hierarchyEntry),
	}
}

// Lookup returns the hierarchy node for a company, reading through to the
// repository when the entry is missing or expired.
func (c *InMemoryHierarchyCache) Lookup(ctx context.Context, companyID uuid.UUID) (*organization.CompanyNode, error) {
	c.mu.RLock()
	entry, ok := c.entries[companyID]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.node, nil
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

	c.mu.Lock()
	c.entries[companyID] = hierarchyEntry{node: node, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return node, nil
}

// Invalidate drops the cached node for a company
func (c *InMemoryHierarchyCache) Invalidate(_ context.Context, companyID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, companyID)
	c.mu.Unlock()
}
