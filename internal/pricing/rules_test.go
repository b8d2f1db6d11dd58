package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankajverma010101-svg/predict-cpi/internal/values"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRuleCovers(t *testing.T) {
	r := Rule{LOIMin: 10, LOIMax: 20, IRMin: 5, IRMax: 15, Price: d("3.00")}

	assert.True(t, r.Covers(values.Range{Min: 12, Max: 12}, values.Range{Min: 8, Max: 8}))
	assert.True(t, r.Covers(values.Range{Min: 10, Max: 20}, values.Range{Min: 5, Max: 15}))
	assert.False(t, r.Covers(values.Range{Min: 12, Max: 22}, values.Range{Min: 8, Max: 8}),
		"a partially escaping loi range is not covered")
	assert.False(t, r.Covers(values.Range{Min: 12, Max: 12}, values.Range{Min: 4, Max: 8}))
}

func TestMatchCover(t *testing.T) {
	rules := []Rule{
		{LOIMin: 1, LOIMax: 9, IRMin: 1, IRMax: 4, Price: d("9.00")},
		{LOIMin: 10, LOIMax: 20, IRMin: 5, IRMax: 15, Price: d("3.00")},
	}

	rule, covered, err := match(rules, values.Range{Min: 12, Max: 12}, values.Range{Min: 8, Max: 8})
	require.NoError(t, err)
	assert.True(t, covered)
	assert.Equal(t, "3", rule.Price.String())
}

func TestMatchNearestNeverFailsWithRules(t *testing.T) {
	rules := []Rule{
		{LOIMin: 1, LOIMax: 5, IRMin: 1, IRMax: 10, Price: d("2.00")},
		{LOIMin: 6, LOIMax: 10, IRMin: 1, IRMax: 10, Price: d("4.00")},
	}

	// Far outside every rule, still resolves to the closest one.
	rule, covered, err := match(rules, values.Range{Min: 60, Max: 60}, values.Range{Min: 90, Max: 90})
	require.NoError(t, err)
	assert.False(t, covered)
	assert.Equal(t, "4", rule.Price.String())
}

func TestMatchNearestTieBreaksOnPrice(t *testing.T) {
	// Both rules sit at the same Manhattan distance from the request.
	rules := []Rule{
		{LOIMin: 20, LOIMax: 20, IRMin: 10, IRMax: 10, Price: d("5.00")},
		{LOIMin: 10, LOIMax: 10, IRMin: 20, IRMax: 20, Price: d("4.00")},
	}

	rule, covered, err := match(rules, values.Range{Min: 15, Max: 15}, values.Range{Min: 15, Max: 15})
	require.NoError(t, err)
	assert.False(t, covered)
	assert.Equal(t, "4", rule.Price.String())
}

func TestMatchNearestTieBreaksOnRowOrder(t *testing.T) {
	rules := []Rule{
		{Market: "first", LOIMin: 20, LOIMax: 20, IRMin: 10, IRMax: 10, Price: d("5.00")},
		{Market: "second", LOIMin: 10, LOIMax: 10, IRMin: 20, IRMax: 20, Price: d("5.00")},
	}

	rule, _, err := match(rules, values.Range{Min: 15, Max: 15}, values.Range{Min: 15, Max: 15})
	require.NoError(t, err)
	assert.Equal(t, "first", rule.Market, "equal distance and price keep the earlier row")
}

func TestMatchEmpty(t *testing.T) {
	_, _, err := match(nil, values.Range{Min: 1, Max: 1}, values.Range{Min: 1, Max: 1})
	assert.ErrorIs(t, err, ErrNoRows)
}
