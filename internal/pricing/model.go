package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
	"github.com/pankajverma010101-svg/predict-cpi/internal/values"
)

// Model is a fitted linear regression over the training feature columns. Two
// variants ship: one trained with the requested_cpi feature for requests that
// carry a price ask, one without. The target is trained on log1p(price), so
// prediction inverts with expm1.
type Model struct {
	Columns      []string  `json:"columns" yaml:"columns"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	LogTarget    bool      `json:"log_target" yaml:"log_target"`

	index map[string]int
}

// compile builds the column index. Called once at load.
func (m *Model) compile() {
	m.index = make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		m.index[c] = i
	}
}

// Predict evaluates the regression over a live feature vector reindexed to
// the trained columns: features absent from the request contribute zero, and
// features the model was not trained on are ignored.
func (m *Model) Predict(features map[string]float64) decimal.Decimal {
	y := m.Intercept
	for name, v := range features {
		if i, ok := m.index[name]; ok {
			y += m.Coefficients[i] * v
		}
	}
	if m.LogTarget {
		y = math.Expm1(y)
	}
	return decimal.NewFromFloat(y).Round(2)
}

// numericFeatures are the canonical fields fed to the model as plain numbers.
var numericFeatures = []string{
	alias.FieldIR, alias.FieldLOI, alias.FieldN,
	alias.FieldFieldTime, alias.FieldNumberOfOpenEnds,
}

// Features builds the model feature vector from a canonical record. Numeric
// fields take the mean of their embedded numbers ("10-15 min" contributes
// 12.5); categorical fields one-hot as "<field>_<cleaned value>"; the derived
// efficiency score is incidence per interview minute. includeRequested adds
// the requested_cpi feature for the with-ask model variant.
func Features(rec map[string]string, includeRequested bool) map[string]float64 {
	f := make(map[string]float64)

	for _, field := range numericFeatures {
		if v, err := values.Average(rec[field]); err == nil {
			f[field] = v
		}
	}
	if includeRequested {
		if v, err := values.Average(rec[alias.FieldRequestedCPI]); err == nil {
			f[alias.FieldRequestedCPI] = v
		}
	}

	if ir, okIR := f[alias.FieldIR]; okIR {
		if loi, okLOI := f[alias.FieldLOI]; okLOI && loi > 0 {
			f["efficiency_score"] = ir / loi
		}
	}

	for _, field := range []string{alias.FieldMarket, alias.FieldMethodology, alias.FieldTargetAudience} {
		if v := values.CleanFreeText(rec[field]); v != "" {
			f[field+"_"+strings.ReplaceAll(v, " ", "_")] = 1
		}
	}

	return f
}
