package organization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	t.Run("creates retail company under a parent", func(t *testing.T) {
		parentID := uuid.New()
		c, err := NewCompany("RT-0001", "Gangnam Mobile", CompanyTypeRetail, &parentID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, "RT-0001", c.Code)
		assert.Equal(t, CompanyTypeRetail, c.Type)
		assert.True(t, c.HasParent())
		assert.True(t, c.IsActive)
		assert.NotEmpty(t, c.GetDomainEvents())
	})

	t.Run("creates headquarters without parent", func(t *testing.T) {
		c, err := NewCompany("HQ-0001", "Mobidist HQ", CompanyTypeHeadquarters, nil)
		require.NoError(t, err)
		assert.False(t, c.HasParent())
	})

	t.Run("fails when headquarters has parent", func(t *testing.T) {
		parentID := uuid.New()
		_, err := NewCompany("HQ-0002", "Bad HQ", CompanyTypeHeadquarters, &parentID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot have a parent")
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewCompany("", "No Code", CompanyTypeAgency, nil)
		require.Error(t, err)
	})

	t.Run("fails with invalid type", func(t *testing.T) {
		_, err := NewCompany("XX-0001", "Unknown", CompanyType("FRANCHISE"), nil)
		require.Error(t, err)
	})
}

func TestCompanyAttachDetach(t *testing.T) {
	c, err := NewCompany("RT-0002", "Busan Mobile", CompanyTypeRetail, nil)
	require.NoError(t, err)
	c.ClearDomainEvents()

	parentID := uuid.New()
	require.NoError(t, c.AttachTo(parentID))
	assert.Equal(t, parentID, *c.ParentID)
	assert.Len(t, c.GetDomainEvents(), 1)

	t.Run("cannot attach to itself", func(t *testing.T) {
		err := c.AttachTo(c.ID)
		require.Error(t, err)
	})

	c.Detach()
	assert.Nil(t, c.ParentID)
}
