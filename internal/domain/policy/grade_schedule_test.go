package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedule() GradeTiers {
	return GradeTiers{
		{Threshold: 5, Level: 1, BonusPerOrder: decimal.NewFromInt(100)},
		{Threshold: 10, Level: 2, BonusPerOrder: decimal.NewFromInt(250)},
		{Threshold: 20, Level: 3, BonusPerOrder: decimal.NewFromInt(500)},
	}
}

func TestGradeTiersValidate(t *testing.T) {
	require.NoError(t, testSchedule().Validate())

	t.Run("thresholds must ascend", func(t *testing.T) {
		tiers := GradeTiers{
			{Threshold: 10, Level: 1, BonusPerOrder: decimal.NewFromInt(100)},
			{Threshold: 5, Level: 2, BonusPerOrder: decimal.NewFromInt(250)},
		}
		require.Error(t, tiers.Validate())
	})

	t.Run("levels must ascend", func(t *testing.T) {
		tiers := GradeTiers{
			{Threshold: 5, Level: 2, BonusPerOrder: decimal.NewFromInt(100)},
			{Threshold: 10, Level: 1, BonusPerOrder: decimal.NewFromInt(250)},
		}
		require.Error(t, tiers.Validate())
	})

	t.Run("bonus cannot be negative", func(t *testing.T) {
		tiers := GradeTiers{
			{Threshold: 5, Level: 1, BonusPerOrder: decimal.NewFromInt(-1)},
		}
		require.Error(t, tiers.Validate())
	})

	t.Run("empty schedule is valid", func(t *testing.T) {
		require.NoError(t, GradeTiers{}.Validate())
	})
}

func TestGradeTiersEvaluate(t *testing.T) {
	tiers := testSchedule()

	cases := []struct {
		orders    int
		wantLevel int
		wantBonus int64
	}{
		{0, 0, 0},
		{4, 0, 0},
		{5, 1, 100},
		{9, 1, 100},
		{10, 2, 250},
		{19, 2, 250},
		{20, 3, 500},
		{100, 3, 500},
	}
	for _, tc := range cases {
		level, bonus := tiers.Evaluate(tc.orders)
		assert.Equal(t, tc.wantLevel, level, "orders=%d", tc.orders)
		assert.True(t, bonus.Equal(decimal.NewFromInt(tc.wantBonus)), "orders=%d", tc.orders)
	}
}

func TestGradeTiersTierForLevel(t *testing.T) {
	tiers := testSchedule()

	tier := tiers.TierForLevel(2)
	require.NotNil(t, tier)
	assert.Equal(t, 10, tier.Threshold)

	assert.Nil(t, tiers.TierForLevel(9))
}
