package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

func TestModelPredict(t *testing.T) {
	m := &Model{
		Columns:      []string{"ir", "loi", "market_usa"},
		Coefficients: []float64{0.01, 0.1, 0.5},
		Intercept:    1.0,
	}
	m.compile()

	got := m.Predict(map[string]float64{
		"ir":         20,
		"loi":        10,
		"market_usa": 1,
		"unknown":    99, // untrained features are ignored
	})
	// 1.0 + 0.2 + 1.0 + 0.5
	assert.Equal(t, "2.7", got.String())
}

func TestModelPredictLogTarget(t *testing.T) {
	m := &Model{
		Columns:      []string{"loi"},
		Coefficients: []float64{0.1},
		Intercept:    1.0,
		LogTarget:    true,
	}
	m.compile()

	got := m.Predict(map[string]float64{"loi": 10})
	want := math.Expm1(2.0)
	f, _ := got.Float64()
	assert.InDelta(t, want, f, 0.005)
}

func TestModelPredictAbsentFeaturesContributeZero(t *testing.T) {
	m := &Model{
		Columns:      []string{"ir", "loi"},
		Coefficients: []float64{0.5, 0.5},
		Intercept:    2.0,
	}
	m.compile()

	assert.Equal(t, "2", m.Predict(map[string]float64{}).String())
}

func TestFeatures(t *testing.T) {
	rec := map[string]string{
		alias.FieldIR:           "20%",
		alias.FieldLOI:          "10-15 min",
		alias.FieldN:            "500",
		alias.FieldMarket:       "USA",
		alias.FieldMethodology:  "Online Survey",
		alias.FieldRequestedCPI: "$4.50",
	}

	f := Features(rec, false)

	assert.Equal(t, 20.0, f[alias.FieldIR])
	assert.Equal(t, 12.5, f[alias.FieldLOI], "ranges contribute their mean")
	assert.Equal(t, 500.0, f[alias.FieldN])
	assert.Equal(t, 20.0/12.5, f["efficiency_score"])
	assert.Equal(t, 1.0, f["market_usa"])
	assert.Equal(t, 1.0, f["methodology_online_survey"])
	_, hasAsk := f[alias.FieldRequestedCPI]
	assert.False(t, hasAsk, "requested price only enters the with-ask variant")
}

func TestFeaturesWithAsk(t *testing.T) {
	rec := map[string]string{
		alias.FieldIR:           "20",
		alias.FieldLOI:          "10",
		alias.FieldRequestedCPI: "$4.50",
	}

	f := Features(rec, true)
	assert.Equal(t, 4.5, f[alias.FieldRequestedCPI])
}

func TestFeaturesNoEfficiencyWithoutLOI(t *testing.T) {
	f := Features(map[string]string{alias.FieldIR: "20"}, false)
	_, ok := f["efficiency_score"]
	assert.False(t, ok)
}
