// Package values parses the small numeric grammars that appear in bid text:
// incidence/LOI ranges, currency amounts, and loose numeric averages.
package values

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// ErrNoNumber is returned when a value holds no parseable numeric content.
var ErrNoNumber = eris.New("values: no numeric content")

var (
	numberRe   = regexp.MustCompile(`\d+\.?\d*`)
	rangeRe    = regexp.MustCompile(`(\d+\.?\d*)\s*(?:-|to)\s*(\d+\.?\d*)`)
	currencyRe = regexp.MustCompile(`(?i)(?:\$|usd\s*|€|₹)\s*(\d{1,6}(?:\.\d{1,2})?)`)
)

// Range is an inclusive numeric interval. A bare number parses to the
// degenerate range (v, v).
type Range struct {
	Min int
	Max int
}

// Mid returns the midpoint of the range.
func (r Range) Mid() float64 {
	return (float64(r.Min) + float64(r.Max)) / 2
}

// Contains reports whether other lies fully inside r.
func (r Range) Contains(other Range) bool {
	return r.Min <= other.Min && other.Max <= r.Max
}

// ParseRange parses incidence or LOI text into a numeric range. Unit and
// percent decoration ("15 min", "20%", "ir 5 to 9") is stripped; bounds are
// rounded up so the parsed range is never less demanding than the text.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, ErrNoNumber
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			if hi < lo {
				lo, hi = hi, lo
			}
			return Range{Min: int(math.Ceil(lo)), Max: int(math.Ceil(hi))}, nil
		}
	}

	if m := numberRe.FindString(s); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			n := int(math.Ceil(v))
			return Range{Min: n, Max: n}, nil
		}
	}

	return Range{}, ErrNoNumber
}

// ParseCurrency extracts the first currency amount ("$8.00", "usd 12",
// "€4.50") from s. The returned string preserves the matched token for
// display; the decimal carries the numeric value.
func ParseCurrency(s string) (decimal.Decimal, string, error) {
	m := currencyRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, "", ErrNoNumber
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, "", eris.Wrap(err, "values: parse currency")
	}
	return d, strings.TrimSpace(m[0]), nil
}

// Average returns the mean of every number embedded in s. Used by the
// regression path, where "10-15 min" contributes 12.5 rather than a bound.
func Average(s string) (float64, error) {
	matches := numberRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return 0, ErrNoNumber
	}
	var sum float64
	var count int
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, ErrNoNumber
	}
	return sum / float64(count), nil
}

// CleanFreeText lowercases s, replaces every non-alphanumeric rune with a
// space, and collapses runs of whitespace. This is the canonical form for
// categorical model features.
func CleanFreeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
