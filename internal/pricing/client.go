package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ClientRule is a flat per-client B2B price: a base CPI plus optional
// seniority premiums layered on when the audience mentions those roles.
type ClientRule struct {
	ClientName      string          `json:"client_name"`
	MinCPI          decimal.Decimal `json:"min_cpi"`
	MaxCPI          decimal.Decimal `json:"max_cpi"`
	DirectorPremium decimal.Decimal `json:"dir_premium"`
	CLevelPremium   decimal.Decimal `json:"clevel_premium"`
}

// ClientRules indexes client rules by exact lowercase name.
type ClientRules map[string]ClientRule

// Lookup finds the rule for a client name, case-insensitively.
func (c ClientRules) Lookup(name string) (ClientRule, bool) {
	r, ok := c[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Price returns min_cpi plus the applicable role premiums.
func (r ClientRule) Price(director, clevel bool) decimal.Decimal {
	p := r.MinCPI
	if director {
		p = p.Add(r.DirectorPremium)
	}
	if clevel {
		p = p.Add(r.CLevelPremium)
	}
	return p
}
