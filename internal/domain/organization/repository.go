package organization

import (
	"context"

	"github.com/google/uuid"
)

// CompanyFilter holds query options for companies
type CompanyFilter struct {
	Type     *CompanyType
	ParentID *uuid.UUID
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

// CompanyRepository persists companies and their ancestor closure
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByCode(ctx context.Context, code string) (*Company, error)
	FindAll(ctx context.Context, filter CompanyFilter) ([]Company, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Company, error)
	Save(ctx context.Context, company *Company) error

	// AncestryOf returns the closure rows for a company ordered by depth ascending
	AncestryOf(ctx context.Context, companyID uuid.UUID) ([]CompanyAncestor, error)
	// ReplaceAncestry atomically replaces the closure rows for a company
	ReplaceAncestry(ctx context.Context, companyID uuid.UUID, ancestry []CompanyAncestor) error
}

// HierarchyLookup is the read side of the company hierarchy consumed by the
// settlement core: company type and direct parent, nothing more.
// Implementations may cache; callers must treat results as a snapshot.
type HierarchyLookup interface {
	Lookup(ctx context.Context, companyID uuid.UUID) (*CompanyNode, error)
	// Invalidate drops any cached state for the company
	Invalidate(ctx context.Context, companyID uuid.UUID)
}

// CompanyNode is the hierarchy projection returned by HierarchyLookup
type CompanyNode struct {
	CompanyID   uuid.UUID
	CompanyName string
	Type        CompanyType
	ParentID    *uuid.UUID
	IsActive    bool
}

// HasParent returns true if the node has a direct parent
func (n *CompanyNode) HasParent() bool {
	return n.ParentID != nil
}
