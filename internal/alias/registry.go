// Package alias defines the canonical bid fields and the synonym registry
// used to fold free-form email labels onto them.
package alias

import (
	"sort"
	"strings"
)

// Canonical field names. These form a closed set: any extracted key that does
// not resolve to one of them is dropped before a record is persisted.
const (
	FieldMarket           = "market"
	FieldMethodology      = "methodology"
	FieldIndustries       = "industries"
	FieldTargetAudience   = "target_audience"
	FieldN                = "n"
	FieldIR               = "ir"
	FieldLOI              = "loi"
	FieldDevices          = "devices"
	FieldFieldTime        = "field_time"
	FieldRequestedCPI     = "requested_cpi"
	FieldFeasibility      = "feasibility"
	FieldQuotas           = "quotas"
	FieldSurveyType       = "survey_type"
	FieldSurveyTopic      = "survey_topic"
	FieldDepartments      = "departments"
	FieldLanguages        = "languages"
	FieldNumberOfOpenEnds = "number_of_open_ends"
	FieldFieldWork        = "field_work"
	FieldEligibility      = "eligibility_criteria"
	FieldClientName       = "client_name"
	FieldDMType           = "dm_type"
	FieldDecisionMaker    = "decision_maker"

	// Transport metadata. Recognized during extraction so the cascade can
	// capture forwarded-mail headers, stripped before the record is treated
	// as business data.
	FieldFrom    = "from"
	FieldSent    = "sent"
	FieldTo      = "to"
	FieldCC      = "cc"
	FieldSubject = "subject"
)

// Registry maps lowercase alias phrases to canonical field names. It is
// immutable after construction; a single instance is built at startup and
// shared by every extraction call.
type Registry struct {
	byAlias   map[string]string
	byField   map[string][]string
	canonical map[string]bool
	sorted    []string // all aliases, longest first
}

// defaultAliases is the built-in synonym table. First-match-wins on
// collisions: if two fields claim the same alias, the field listed earlier
// keeps it.
var defaultAliases = []struct {
	field   string
	aliases []string
}{
	{FieldMarket, []string{
		"country", "market", "market area", "country of field", "geo", "geos", "geo/s",
		"country/geos", "country/geo", "markets", "market/region", "geography", "countries",
		"fieldwork country", "region", "regions", "sample country", "survey market",
		"survey markets", "city", "cities", "zip code", "zipcode", "postal code",
		"postalcode", "area", "location", "locations", "market (geographical location)",
		"country(ies)", "country (ies)",
	}},
	{FieldMethodology, []string{"methodology", "method"}},
	{FieldIndustries, []string{
		"industries", "industry", "industry and role", "target industry", "target industries",
	}},
	{FieldTargetAudience, []string{
		"target", "target audience", "targeting", "audience", "targeting audience",
		"targeting details", "targeting detail", "target definition", "target role",
		"target role(s)", "target role (s)",
	}},
	{FieldN, []string{
		"required", "n size", "n", "sample", "completes", "req. n", "required n",
		"n required", "needed n", "sample size", "size", "n needed", "needed completes",
		"needed complete", "number of completes", "number of completes(n)",
		"number of completes (n)", "total n", "sample specs", "sample specification",
		"number of completes needed", "no. of completes", "needed", "need",
	}},
	{FieldIR, []string{
		"ir", "incidence", "expected ir", "assumed incidence", "incidence rate",
		"incidence rate -ir", "estimated ir", "assumed incidence (targeted)",
		"assumed incidence (target)",
	}},
	{FieldLOI, []string{
		"loi", "estimated loi", "estimated loi(min)", "estimated loi (mins)",
		"estimated loi(mins)", "estimated loi (min)", "survey length", "survey length(min)",
		"survey length (min)", "survey length(mins)", "survey length (mins)", "loi (mins)",
		"loi(min)", "loi(mins)", "loi (min)", "length of interview (loi)",
		"length of interview(loi)", "estimated online loi", "survey loi", "loi (minutes)",
		"loi(minutes)", "loi (minute)", "loi(minute)",
	}},
	{FieldDevices, []string{"devices", "device compatibility", "device", "device/s"}},
	{FieldFieldTime, []string{
		"field time", "field time(days)", "field time (days)", "field time(day)",
		"field time (day)", "required field time", "required field time(day)",
		"business days in field", "days in field", "required field time (day)",
		"required field time(days)", "required field time (days)", "field end",
	}},
	{FieldRequestedCPI, []string{"requested cpi", "cpi", "your cpi in usd", "cpc", "requested cpc"}},
	{FieldFeasibility, []string{"your feasibility", "feasibility"}},
	{FieldQuotas, []string{
		"quota", "quotas", "quota details", "quota detail", "quotas details",
		"quotas detail", "specific quotas / mins", "specific quotas", "specific quota",
		"quotas (soi)", "quotas(soi)",
	}},
	{FieldSurveyType, []string{"survey type"}},
	{FieldSurveyTopic, []string{"survey topic"}},
	{FieldDepartments, []string{"department", "departments"}},
	{FieldLanguages, []string{
		"language", "languages", "language/s", "survey language", "questionnaire language",
		"questionnaire languages", "questionnaire language(s)", "questionnaire language (s)",
		"language(s)", "language (s)",
	}},
	{FieldNumberOfOpenEnds, []string{
		"number of open ends", "number of open end", "no. of open ends", "no. of open end",
		"# of open ends", "the number of open ends", "open end", "open ends",
		"# of open ends (oes)?", "# of open ends (oes) ?",
	}},
	{FieldFieldWork, []string{"field work"}},
	{FieldEligibility, []string{"eligibility criteria"}},
	{FieldFrom, []string{"from"}},
	{FieldSent, []string{"sent", "date"}},
	{FieldTo, []string{"to"}},
	{FieldCC, []string{"cc"}},
	{FieldSubject, []string{"subject"}},
}

// NewRegistry builds the default registry.
func NewRegistry() *Registry {
	r := &Registry{
		byAlias:   make(map[string]string),
		byField:   make(map[string][]string),
		canonical: make(map[string]bool),
	}
	for _, e := range defaultAliases {
		r.canonical[e.field] = true
		for _, a := range e.aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, taken := r.byAlias[a]; taken {
				continue // first field wins on collision
			}
			r.byAlias[a] = e.field
			r.byField[e.field] = append(r.byField[e.field], a)
			r.sorted = append(r.sorted, a)
		}
	}
	// Derived fields are canonical even though no alias maps to them.
	r.canonical[FieldClientName] = true
	r.canonical[FieldDMType] = true
	r.canonical[FieldDecisionMaker] = true

	sort.Slice(r.sorted, func(i, j int) bool {
		if len(r.sorted[i]) != len(r.sorted[j]) {
			return len(r.sorted[i]) > len(r.sorted[j])
		}
		return r.sorted[i] < r.sorted[j]
	})
	return r
}

// Resolve maps a raw label to its canonical field. Lookup is case- and
// edge-whitespace-insensitive.
func (r *Registry) Resolve(raw string) (string, bool) {
	field, ok := r.byAlias[strings.ToLower(strings.TrimSpace(raw))]
	return field, ok
}

// IsCanonical reports whether name is a member of the closed canonical set.
func (r *Registry) IsCanonical(name string) bool {
	return r.canonical[name]
}

// Aliases returns the alias phrases registered for a canonical field.
func (r *Registry) Aliases(field string) []string {
	return r.byField[field]
}

// AllAliases returns every registered alias, longest first. Fuzzy matching
// iterates in this order so a longer phrase wins over its substrings.
func (r *Registry) AllAliases() []string {
	return r.sorted
}

// TransportFields lists the mail-header fields that are recognized during
// extraction but stripped before a record is treated as business data.
func TransportFields() []string {
	return []string{FieldFrom, FieldSent, FieldTo, FieldCC, FieldSubject}
}
