package organization

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
)

// MaxHierarchyDepth bounds the distribution hierarchy. Real hierarchies are
// three tiers (headquarters, agency, retail); the guard rejects runaway
// chains and cycles when the closure is rebuilt.
const MaxHierarchyDepth = 10

// CompanyAncestor is one row of the precomputed ancestor closure:
// company -> ancestor at the given depth (1 = direct parent).
// The closure makes hierarchy lookups at settlement-creation time O(1)
// instead of walking parent chains.
type CompanyAncestor struct {
	CompanyID  uuid.UUID `json:"company_id"`
	AncestorID uuid.UUID `json:"ancestor_id"`
	Depth      int       `json:"depth"`
}

// HierarchyService rebuilds the ancestor closure when a company's parent
// changes. It is a pure domain service; persistence of the closure rows is
// the repository's job.
type HierarchyService struct{}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService() *HierarchyService {
	return &HierarchyService{}
}

// BuildAncestry computes the closure rows for a company given its parent's
// existing ancestry (ordered by depth ascending). Returns an empty slice for
// root companies.
func (s *HierarchyService) BuildAncestry(company *Company, parentAncestry []CompanyAncestor) ([]CompanyAncestor, error) {
	if company.ParentID == nil {
		return []CompanyAncestor{}, nil
	}

	parentID := *company.ParentID
	if parentID == company.ID {
		return nil, shared.NewDomainError("INVALID_HIERARCHY", "Company cannot be its own parent")
	}

	ancestry := make([]CompanyAncestor, 0, len(parentAncestry)+1)
	ancestry = append(ancestry, CompanyAncestor{
		CompanyID:  company.ID,
		AncestorID: parentID,
		Depth:      1,
	})

	for _, a := range parentAncestry {
		if a.AncestorID == company.ID {
			return nil, shared.NewDomainError("INVALID_HIERARCHY",
				fmt.Sprintf("Attaching company %s to %s would create a cycle", company.ID, parentID))
		}
		depth := a.Depth + 1
		if depth > MaxHierarchyDepth {
			return nil, shared.NewDomainError("INVALID_HIERARCHY",
				fmt.Sprintf("Hierarchy depth exceeds maximum of %d", MaxHierarchyDepth))
		}
		ancestry = append(ancestry, CompanyAncestor{
			CompanyID:  company.ID,
			AncestorID: a.AncestorID,
			Depth:      depth,
		})
	}

	return ancestry, nil
}

// DirectParent returns the depth-1 ancestor from a closure slice, or nil
func DirectParent(ancestry []CompanyAncestor) *uuid.UUID {
	for _, a := range ancestry {
		if a.Depth == 1 {
			id := a.AncestorID
			return &id
		}
	}
	return nil
}
