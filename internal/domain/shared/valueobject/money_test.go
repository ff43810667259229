package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(10000), KRW)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(10000)))
		assert.Equal(t, KRW, m.Currency())
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		require.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyKRWFromInt(7000)
	b := NewMoneyKRWFromInt(3000)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Equals(NewMoneyKRWFromInt(10000)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Equals(NewMoneyKRWFromInt(4000)))
	})

	t.Run("multiply by int", func(t *testing.T) {
		assert.True(t, b.MultiplyByInt(3).Equals(NewMoneyKRWFromInt(9000)))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneyComparison(t *testing.T) {
	a := NewMoneyKRWFromInt(100)
	b := NewMoneyKRWFromInt(200)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, ZeroKRW().IsZero())
	assert.True(t, a.IsPositive())
	assert.True(t, a.Negate().IsNegative())
}

func TestMoneyRound(t *testing.T) {
	m := NewMoneyKRWFromFloat(1234.5678)
	assert.Equal(t, "1234.57", m.Round(2).StringFixed(2))
	assert.Equal(t, "1235", m.Round(0).StringFixed(0))
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyKRWFromInt(15000)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}
