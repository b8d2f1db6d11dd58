// Package pricing resolves a price quote for an extracted bid record against
// tiered rule tables, with nearest-rule, bucketed-lookup, and model-inference
// fallbacks.
package pricing

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Distinguishable failure classes. Callers match with eris.Is.
var (
	// ErrValidation reports a missing required request field.
	ErrValidation = eris.New("pricing: missing required input")
	// ErrInvalidInput reports incidence/LOI text with no parseable number.
	ErrInvalidInput = eris.New("pricing: invalid numeric input")
	// ErrNoRows reports a market with no rules and no fallback bucket.
	ErrNoRows = eris.New("pricing: no rows for market")
	// ErrNoMatch reports that no resolution branch produced a price.
	ErrNoMatch = eris.New("pricing: no pricing found")
)

// Source tags the resolution branch that produced a price.
type Source string

const (
	SourceB2BCover         Source = "b2b_cover"
	SourceB2BNearest       Source = "b2b_nearest"
	SourceAcuityB2BCover   Source = "acuity_b2b_cover"
	SourceAcuityB2BNearest Source = "acuity_b2b_nearest"
	SourceAcuityB2CCover   Source = "acuity_b2c_cover"
	SourceAcuityB2CNearest Source = "acuity_b2c_nearest"
	SourceClientRule       Source = "client_rule"
	SourceConsumerExact    Source = "consumer_exact"
	SourceConsumerNearest  Source = "consumer_nearest"
	SourceModel            Source = "model"
)

// Request carries the canonical fields the resolution state machine keys on.
// Fields holds the remaining canonical record for the regression path.
type Request struct {
	BusinessType string            `json:"business_type"`
	Market       string            `json:"market"`
	IR           string            `json:"ir"`
	LOI          string            `json:"loi"`
	ClientName   string            `json:"client_name,omitempty"`
	Director     bool              `json:"dir,omitempty"`
	CLevel       bool              `json:"clevel,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Response is the outcome of one resolution.
type Response struct {
	Status         string          `json:"status"`
	PredictedPrice decimal.Decimal `json:"predicted_price"`
	Source         Source          `json:"source"`
	MatchedRule    *Rule           `json:"matched_rule,omitempty"`
}
