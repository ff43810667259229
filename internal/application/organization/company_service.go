package organization

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionManager runs a unit of work atomically. The context passed to
// fn carries the transaction; repositories resolve it so every repository
// call inside fn joins the same database transaction.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateCompanyRequest carries the input for registering a company
type CreateCompanyRequest struct {
	Code     string  `json:"code" binding:"required,max=30"`
	Name     string  `json:"name" binding:"required,max=200"`
	Type     string  `json:"type" binding:"required"`
	ParentID *string `json:"parent_id"`
	Remark   string  `json:"remark" binding:"max=500"`
}

// CompanyResponse is the API projection of a company
type CompanyResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	Remark    string     `json:"remark,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// AncestorResponse is one closure row of a company's ancestry
type AncestorResponse struct {
	AncestorID uuid.UUID `json:"ancestor_id"`
	Depth      int       `json:"depth"`
}

func toCompanyResponse(c *organization.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		ParentID:  c.ParentID,
		IsActive:  c.IsActive,
		Remark:    c.Remark,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// CompanyService manages the distribution hierarchy the settlement core
// reads from
type CompanyService struct {
	companyRepo organization.CompanyRepository
	hierarchy   *organization.HierarchyService
	lookup      organization.HierarchyLookup
	txManager   TransactionManager
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	companyRepo organization.CompanyRepository,
	hierarchy *organization.HierarchyService,
	lookup organization.HierarchyLookup,
	txManager TransactionManager,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		hierarchy:   hierarchy,
		lookup:      lookup,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create registers a company and builds its ancestor closure
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	if existing, err := s.companyRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Company code already in use")
	} else if err != nil && !shared.HasCode(err, shared.CodeNotFound) {
		return nil, err
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid parent company id")
		}
		parentID = &id
	}

	company, err := organization.NewCompany(req.Code, req.Name, organization.CompanyType(req.Type), parentID)
	if err != nil {
		return nil, err
	}
	company.Remark = req.Remark

	err = s.txManager.Execute(ctx, func(txCtx context.Context) error {
		var parentAncestry []organization.CompanyAncestor
		if parentID != nil {
			parent, err := s.companyRepo.FindByID(txCtx, *parentID)
			if err != nil {
				return err
			}
			if !parent.IsActive {
				return shared.NewDomainError(shared.CodeInvalidState, "Parent company is inactive")
			}
			parentAncestry, err = s.companyRepo.AncestryOf(txCtx, parent.ID)
			if err != nil {
				return err
			}
		}

		ancestry, err := s.hierarchy.BuildAncestry(company, parentAncestry)
		if err != nil {
			return err
		}
		if err := s.companyRepo.Save(txCtx, company); err != nil {
			return err
		}
		return s.companyRepo.ReplaceAncestry(txCtx, company.ID, ancestry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("code", company.Code),
		zap.String("type", string(company.Type)))

	return toCompanyResponse(company), nil
}

// GetByID returns one company
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// GetByCode returns one company by its business code
func (s *CompanyService) GetByCode(ctx context.Context, code string) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// List returns companies matching the filter
func (s *CompanyService) List(ctx context.Context, filter organization.CompanyFilter) ([]CompanyResponse, error) {
	companies, err := s.companyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = *toCompanyResponse(&companies[i])
	}
	return responses, nil
}

// ListChildren returns the direct children of a company
func (s *CompanyService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]CompanyResponse, error) {
	children, err := s.companyRepo.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	responses := make([]CompanyResponse, len(children))
	for i := range children {
		responses[i] = *toCompanyResponse(&children[i])
	}
	return responses, nil
}

// GetAncestry returns the ancestor chain of a company ordered from direct
// parent outward
func (s *CompanyService) GetAncestry(ctx context.Context, companyID uuid.UUID) ([]AncestorResponse, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	ancestry, err := s.companyRepo.AncestryOf(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]AncestorResponse, len(ancestry))
	for i, a := range ancestry {
		responses[i] = AncestorResponse{AncestorID: a.AncestorID, Depth: a.Depth}
	}
	return responses, nil
}

// Reparent moves a company under a new parent and rebuilds its closure.
// The hierarchy cache entry for the company is invalidated so settlement
// splits see the new parent immediately.
func (s *CompanyService) Reparent(ctx context.Context, companyID, newParentID uuid.UUID) (*CompanyResponse, error) {
	var company *organization.Company
	err := s.txManager.Execute(ctx, func(txCtx context.Context) error {
		var err error
		company, err = s.companyRepo.FindByID(txCtx, companyID)
		if err != nil {
			return err
		}
		parent, err := s.companyRepo.FindByID(txCtx, newParentID)
		if err != nil {
			return err
		}
		if !parent.IsActive {
			return shared.NewDomainError(shared.CodeInvalidState, "Parent company is inactive")
		}
		if err := company.AttachTo(newParentID); err != nil {
			return err
		}
		parentAncestry, err := s.companyRepo.AncestryOf(txCtx, parent.ID)
		if err != nil {
			return err
		}
		ancestry, err := s.hierarchy.BuildAncestry(company, parentAncestry)
		if err != nil {
			return err
		}
		if err := s.companyRepo.Save(txCtx, company); err != nil {
			return err
		}
		return s.companyRepo.ReplaceAncestry(txCtx, company.ID, ancestry)
	})
	if err != nil {
		return nil, err
	}

	s.lookup.Invalidate(ctx, companyID)

	s.logger.Info("company reparented",
		zap.String("company_id", companyID.String()),
		zap.String("new_parent_id", newParentID.String()))

	return toCompanyResponse(company), nil
}

// Deactivate marks a company inactive. Existing settlements are untouched;
// new orders for the company will fail the settleable check upstream.
func (s *CompanyService) Deactivate(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Deactivate()
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, id)
	return toCompanyResponse(company), nil
}

// Activate marks a company active again
func (s *CompanyService) Activate(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Activate()
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, id)
	return toCompanyResponse(company), nil
}
