package organization

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByCode(ctx context.Context, code string) (*organization.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter organization.CompanyFilter) ([]organization.Company, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]organization.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]organization.Company, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]organization.Company), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *organization.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) AncestryOf(ctx context.Context, companyID uuid.UUID) ([]organization.CompanyAncestor, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]organization.CompanyAncestor), args.Error(1)
}

func (m *MockCompanyRepository) ReplaceAncestry(ctx context.Context, companyID uuid.UUID, ancestry []organization.CompanyAncestor) error {
	args := m.Called(ctx, companyID, ancestry)
	return args.Error(0)
}

type MockHierarchyLookup struct {
	mock.Mock
}

func (m *MockHierarchyLookup) Lookup(ctx context.Context, companyID uuid.UUID) (*organization.CompanyNode, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.CompanyNode), args.Error(1)
}

func (m *MockHierarchyLookup) Invalidate(ctx context.Context, companyID uuid.UUID) {
	m.Called(ctx, companyID)
}

type noopTx struct{}

func (noopTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type companyFixture struct {
	repo    *MockCompanyRepository
	lookup  *MockHierarchyLookup
	service *CompanyService
}

func newCompanyFixture() *companyFixture {
	f := &companyFixture{
		repo:   new(MockCompanyRepository),
		lookup: new(MockHierarchyLookup),
	}
	f.service = NewCompanyService(f.repo, organization.NewHierarchyService(), f.lookup, noopTx{}, zap.NewNop())
	return f
}

func newAgency(t *testing.T) *organization.Company {
	t.Helper()
	hq, err := organization.NewCompany("HQ001", "Mobidist HQ", organization.CompanyTypeHeadquarters, nil)
	require.NoError(t, err)
	agency, err := organization.NewCompany("AG001", "Seoul Agency", organization.CompanyTypeAgency, &hq.ID)
	require.NoError(t, err)
	return agency
}

func TestCompanyService_Create(t *testing.T) {
	t.Run("creates a retail under its agency and writes the closure", func(t *testing.T) {
		f := newCompanyFixture()
		agency := newAgency(t)
		parentIDStr := agency.ID.String()

		f.repo.On("FindByCode", mock.Anything, "RT001").Return(nil, shared.ErrNotFound)
		f.repo.On("FindByID", mock.Anything, agency.ID).Return(agency, nil)
		f.repo.On("AncestryOf", mock.Anything, agency.ID).Return([]organization.CompanyAncestor{
			{CompanyID: agency.ID, AncestorID: *agency.ParentID, Depth: 1},
		}, nil)
		f.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.repo.On("ReplaceAncestry", mock.Anything, mock.Anything, mock.MatchedBy(func(ancestry []organization.CompanyAncestor) bool {
			return len(ancestry) == 2 && ancestry[0].Depth == 1 && ancestry[1].Depth == 2
		})).Return(nil)

		resp, err := f.service.Create(context.Background(), CreateCompanyRequest{
			Code:     "RT001",
			Name:     "Gangnam Mobile",
			Type:     "RETAIL",
			ParentID: &parentIDStr,
		})

		require.NoError(t, err)
		assert.Equal(t, "RT001", resp.Code)
		assert.Equal(t, "RETAIL", resp.Type)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, agency.ID, *resp.ParentID)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		f := newCompanyFixture()
		agency := newAgency(t)

		f.repo.On("FindByCode", mock.Anything, "AG001").Return(agency, nil)

		_, err := f.service.Create(context.Background(), CreateCompanyRequest{
			Code: "AG001",
			Name: "Another Agency",
			Type: "AGENCY",
		})

		assert.True(t, shared.HasCode(err, shared.CodeAlreadyExists))
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an inactive parent", func(t *testing.T) {
		f := newCompanyFixture()
		agency := newAgency(t)
		agency.Deactivate()
		parentIDStr := agency.ID.String()

		f.repo.On("FindByCode", mock.Anything, "RT002").Return(nil, shared.ErrNotFound)
		f.repo.On("FindByID", mock.Anything, agency.ID).Return(agency, nil)

		_, err := f.service.Create(context.Background(), CreateCompanyRequest{
			Code:     "RT002",
			Name:     "Hongdae Mobile",
			Type:     "RETAIL",
			ParentID: &parentIDStr,
		})

		assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
	})

	t.Run("rejects a malformed parent id", func(t *testing.T) {
		f := newCompanyFixture()
		badID := "not-a-uuid"

		f.repo.On("FindByCode", mock.Anything, "RT003").Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(context.Background(), CreateCompanyRequest{
			Code:     "RT003",
			Name:     "Busan Mobile",
			Type:     "RETAIL",
			ParentID: &badID,
		})

		assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
	})
}

func TestCompanyService_Reparent(t *testing.T) {
	t.Run("moves the company and invalidates the hierarchy cache", func(t *testing.T) {
		f := newCompanyFixture()
		oldAgency := newAgency(t)
		newAgencyCo := newAgency(t)
		retail, err := organization.NewCompany("RT010", "Mapo Mobile", organization.CompanyTypeRetail, &oldAgency.ID)
		require.NoError(t, err)

		f.repo.On("FindByID", mock.Anything, retail.ID).Return(retail, nil)
		f.repo.On("FindByID", mock.Anything, newAgencyCo.ID).Return(newAgencyCo, nil)
		f.repo.On("AncestryOf", mock.Anything, newAgencyCo.ID).Return([]organization.CompanyAncestor{
			{CompanyID: newAgencyCo.ID, AncestorID: *newAgencyCo.ParentID, Depth: 1},
		}, nil)
		f.repo.On("Save", mock.Anything, retail).Return(nil)
		f.repo.On("ReplaceAncestry", mock.Anything, retail.ID, mock.Anything).Return(nil)
		f.lookup.On("Invalidate", mock.Anything, retail.ID).Return()

		resp, err := f.service.Reparent(context.Background(), retail.ID, newAgencyCo.ID)

		require.NoError(t, err)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, newAgencyCo.ID, *resp.ParentID)
		f.lookup.AssertCalled(t, "Invalidate", mock.Anything, retail.ID)
	})

	t.Run("rejects self-parenting", func(t *testing.T) {
		f := newCompanyFixture()
		retail, err := organization.NewCompany("RT011", "Jongno Mobile", organization.CompanyTypeRetail, nil)
		require.NoError(t, err)

		f.repo.On("FindByID", mock.Anything, retail.ID).Return(retail, nil)

		_, err = f.service.Reparent(context.Background(), retail.ID, retail.ID)

		assert.Error(t, err)
		f.lookup.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

func TestCompanyService_Deactivate(t *testing.T) {
	f := newCompanyFixture()
	agency := newAgency(t)

	f.repo.On("FindByID", mock.Anything, agency.ID).Return(agency, nil)
	f.repo.On("Save", mock.Anything, agency).Return(nil)
	f.lookup.On("Invalidate", mock.Anything, agency.ID).Return()

	resp, err := f.service.Deactivate(context.Background(), agency.ID)

	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	f.lookup.AssertCalled(t, "Invalidate", mock.Anything, agency.ID)
}
