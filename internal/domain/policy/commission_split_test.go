package policy

import (
	"testing"

	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitPolicy(t *testing.T) {
	t.Run("rejects shares not summing to 10000 bps", func(t *testing.T) {
		_, err := NewSplitPolicy(SplitRule{
			CompanyType:    organization.CompanyTypeRetail,
			OwnShareBps:    7000,
			ParentShareBps: 2000,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must sum")
	})

	t.Run("rejects negative shares", func(t *testing.T) {
		_, err := NewSplitPolicy(SplitRule{
			CompanyType:    organization.CompanyTypeRetail,
			OwnShareBps:    11000,
			ParentShareBps: -1000,
		})
		require.Error(t, err)
	})

	t.Run("rejects duplicate company type", func(t *testing.T) {
		_, err := NewSplitPolicy(
			SplitRule{CompanyType: organization.CompanyTypeRetail, OwnShareBps: 7000, ParentShareBps: 3000},
			SplitRule{CompanyType: organization.CompanyTypeRetail, OwnShareBps: 8000, ParentShareBps: 2000},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Duplicate")
	})
}

func TestSplitPolicySplit(t *testing.T) {
	p := DefaultSplitPolicy()

	t.Run("retail splits 70/30", func(t *testing.T) {
		own, parent := p.Split(organization.CompanyTypeRetail, valueobject.NewMoneyKRWFromInt(10000))
		assert.True(t, own.Equals(valueobject.NewMoneyKRWFromInt(7000)))
		assert.True(t, parent.Equals(valueobject.NewMoneyKRWFromInt(3000)))
	})

	t.Run("split preserves the total under rounding", func(t *testing.T) {
		total := valueobject.NewMoneyKRWFromInt(9999)
		own, parent := p.Split(organization.CompanyTypeRetail, total)
		assert.True(t, own.MustAdd(parent).Equals(total))
	})

	t.Run("agency keeps full amount", func(t *testing.T) {
		own, parent := p.Split(organization.CompanyTypeAgency, valueobject.NewMoneyKRWFromInt(5000))
		assert.True(t, own.Equals(valueobject.NewMoneyKRWFromInt(5000)))
		assert.True(t, parent.IsZero())
	})

	t.Run("unknown type falls back to full own share", func(t *testing.T) {
		empty, err := NewSplitPolicy()
		require.NoError(t, err)
		own, parent := empty.Split(organization.CompanyTypeRetail, valueobject.NewMoneyKRWFromInt(1000))
		assert.True(t, own.Equals(valueobject.NewMoneyKRWFromInt(1000)))
		assert.True(t, parent.IsZero())
	})
}
