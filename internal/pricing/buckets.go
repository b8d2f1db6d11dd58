package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Consumer market buckets. Anything that does not normalize to USA prices as
// INTERNATIONAL.
const (
	MarketUSA           = "USA"
	MarketInternational = "INTERNATIONAL"
)

// ConsumerKey addresses one cell of the consumer lookup table.
type ConsumerKey struct {
	Market string `json:"market"`
	IR     int    `json:"ir"`
	LOI    int    `json:"loi"`
}

// ConsumerTable is the bucketed consumer price table: two sorted ascending
// bucket boundary lists plus a price per (market, ir bucket, loi bucket) cell.
// It is read-only after load.
type ConsumerTable struct {
	IRBuckets  []int                           `json:"ir_buckets"`
	LOIBuckets []int                           `json:"loi_buckets"`
	Prices     map[ConsumerKey]decimal.Decimal `json:"prices"`
}

// MapToNextBucket rounds v up to the first bucket boundary >= v, so the
// resolved cell is always at least as demanding as the request. Values above
// the last boundary clamp to it. The result is non-decreasing in v.
func MapToNextBucket(v int, buckets []int) int {
	if len(buckets) == 0 {
		return v
	}
	i := sort.SearchInts(buckets, v)
	if i == len(buckets) {
		return buckets[len(buckets)-1]
	}
	return buckets[i]
}

// Bucket maps raw IR and LOI values onto the table's boundaries.
func (t *ConsumerTable) Bucket(ir, loi int) (int, int) {
	return MapToNextBucket(ir, t.IRBuckets), MapToNextBucket(loi, t.LOIBuckets)
}

// Lookup returns the exact cell price, if present.
func (t *ConsumerTable) Lookup(market string, ir, loi int) (decimal.Decimal, bool) {
	p, ok := t.Prices[ConsumerKey{Market: market, IR: ir, LOI: loi}]
	return p, ok
}

// Nearest finds the cell Manhattan-closest to the requested buckets, measured
// over bucket indices, scanning only cells in the same market. Ties break
// toward the lowest price, then the lowest (ir, loi) key, so the result does
// not depend on map iteration order. The bool is false when the market has no
// cells at all.
func (t *ConsumerTable) Nearest(market string, ir, loi int) (decimal.Decimal, ConsumerKey, bool) {
	reqIR := bucketIndex(t.IRBuckets, ir)
	reqLOI := bucketIndex(t.LOIBuckets, loi)

	var (
		found     bool
		best      ConsumerKey
		bestDist  int
		bestPrice decimal.Decimal
	)
	for key, price := range t.Prices {
		if key.Market != market {
			continue
		}
		d := abs(bucketIndex(t.IRBuckets, key.IR)-reqIR) + abs(bucketIndex(t.LOIBuckets, key.LOI)-reqLOI)
		switch {
		case !found, d < bestDist:
		case d == bestDist && price.LessThan(bestPrice):
		case d == bestDist && price.Equal(bestPrice) && keyLess(key, best):
		default:
			continue
		}
		found, best, bestDist, bestPrice = true, key, d, price
	}
	return bestPrice, best, found
}

func bucketIndex(buckets []int, v int) int {
	i := sort.SearchInts(buckets, v)
	if i == len(buckets) && i > 0 {
		return i - 1
	}
	return i
}

func keyLess(a, b ConsumerKey) bool {
	if a.IR != b.IR {
		return a.IR < b.IR
	}
	return a.LOI < b.LOI
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
