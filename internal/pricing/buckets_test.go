package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConsumerTable() *ConsumerTable {
	return &ConsumerTable{
		IRBuckets:  []int{10, 30, 50, 100},
		LOIBuckets: []int{5, 10, 20, 30},
		Prices: map[ConsumerKey]decimal.Decimal{
			{Market: MarketUSA, IR: 30, LOI: 20}:           d("2.50"),
			{Market: MarketUSA, IR: 50, LOI: 20}:           d("2.00"),
			{Market: MarketInternational, IR: 30, LOI: 20}: d("1.75"),
		},
	}
}

func TestMapToNextBucket(t *testing.T) {
	buckets := []int{10, 30, 50, 100}

	tests := []struct {
		v    int
		want int
	}{
		{1, 10},
		{10, 10},
		{11, 30},
		{30, 30},
		{31, 50},
		{99, 100},
		{100, 100},
		{250, 100}, // above the last boundary clamps to it
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapToNextBucket(tt.v, buckets), "v=%d", tt.v)
	}
}

func TestMapToNextBucketMonotonic(t *testing.T) {
	buckets := []int{10, 30, 50, 100}

	prev := MapToNextBucket(0, buckets)
	for v := 1; v <= 120; v++ {
		cur := MapToNextBucket(v, buckets)
		assert.GreaterOrEqual(t, cur, prev, "v=%d", v)
		prev = cur
	}
}

func TestConsumerLookup(t *testing.T) {
	table := testConsumerTable()

	irB, loiB := table.Bucket(25, 12)
	assert.Equal(t, 30, irB)
	assert.Equal(t, 20, loiB)

	price, ok := table.Lookup(MarketUSA, irB, loiB)
	require.True(t, ok)
	assert.Equal(t, "2.5", price.String())

	_, ok = table.Lookup(MarketUSA, 100, 30)
	assert.False(t, ok)
}

func TestConsumerNearest(t *testing.T) {
	table := testConsumerTable()

	// No exact (100, 30) cell; nearest USA cell by bucket index wins.
	price, key, ok := table.Nearest(MarketUSA, 100, 30)
	require.True(t, ok)
	assert.Equal(t, MarketUSA, key.Market)
	assert.Equal(t, "2", price.String(), "the bucket-index-closest cell wins")
	assert.Equal(t, ConsumerKey{Market: MarketUSA, IR: 50, LOI: 20}, key)
}

func TestConsumerNearestStaysInMarket(t *testing.T) {
	table := testConsumerTable()

	_, key, ok := table.Nearest(MarketInternational, 100, 30)
	require.True(t, ok)
	assert.Equal(t, MarketInternational, key.Market)
}

func TestConsumerNearestEmptyMarket(t *testing.T) {
	table := &ConsumerTable{IRBuckets: []int{10}, LOIBuckets: []int{5}}

	_, _, ok := table.Nearest(MarketUSA, 10, 5)
	assert.False(t, ok)
}
