package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/pankajverma010101-svg/predict-cpi/internal/values"
)

// Rule is one row of a B2B rate card: a price valid while both the request's
// LOI and incidence ranges fall inside the rule's.
type Rule struct {
	Market string          `json:"market"`
	LOIMin int             `json:"loi_min"`
	LOIMax int             `json:"loi_max"`
	IRMin  int             `json:"ir_min"`
	IRMax  int             `json:"ir_max"`
	Price  decimal.Decimal `json:"price"`
}

func (r Rule) loiRange() values.Range { return values.Range{Min: r.LOIMin, Max: r.LOIMax} }
func (r Rule) irRange() values.Range  { return values.Range{Min: r.IRMin, Max: r.IRMax} }

// Covers reports whether the rule's LOI and IR ranges both fully contain the
// request's.
func (r Rule) Covers(loi, ir values.Range) bool {
	return r.loiRange().Contains(loi) && r.irRange().Contains(ir)
}

// distance is the Manhattan distance between the rule's range midpoints and
// the request's.
func (r Rule) distance(loi, ir values.Range) float64 {
	return math.Abs(r.loiRange().Mid()-loi.Mid()) + math.Abs(r.irRange().Mid()-ir.Mid())
}

// RuleTable groups rules by their market key (normalized country for the
// general table, region for client-scoped tables).
type RuleTable map[string][]Rule

// Markets returns the number of distinct market keys.
func (t RuleTable) Markets() int { return len(t) }

// match runs the shared range-cover algorithm over one market's rules: an
// exact cover if any rule contains both request ranges, otherwise the rule
// whose range midpoints are Manhattan-closest. Equidistant rules break toward
// the lowest price, then the earlier table row, so resolution does not depend
// on rate-card row order.
func match(rules []Rule, loi, ir values.Range) (Rule, bool, error) {
	if len(rules) == 0 {
		return Rule{}, false, ErrNoRows
	}

	for _, r := range rules {
		if r.Covers(loi, ir) {
			return r, true, nil
		}
	}

	best := rules[0]
	bestDist := best.distance(loi, ir)
	for _, r := range rules[1:] {
		d := r.distance(loi, ir)
		if d < bestDist || (d == bestDist && r.Price.LessThan(best.Price)) {
			best, bestDist = r, d
		}
	}
	return best, false, nil
}
