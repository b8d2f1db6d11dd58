package pricing

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/pankajverma010101-svg/predict-cpi/internal/country"
	"github.com/pankajverma010101-svg/predict-cpi/internal/fetcher"
)

// LoadRules reads one sheet of a rate card workbook into a RuleTable. Rows
// carry market, loi_min, loi_max, ir_min, ir_max, price after one header row.
// Market keys are folded onto the canonical country vocabulary; region-keyed
// sheets (APAC, EU) pass through unchanged.
func LoadRules(path, sheet string) (RuleTable, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet, SkipRows: 1})
	if err != nil {
		return nil, eris.Wrap(err, "pricing: read rate card")
	}

	table := RuleTable{}
	for i, row := range rows {
		if len(row) < 6 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		rule, err := parseRuleRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "pricing: rate card %s row %d", sheet, i+2)
		}
		table[rule.Market] = append(table[rule.Market], rule)
	}
	if len(table) == 0 {
		return nil, eris.Errorf("pricing: rate card sheet %s has no rules", sheet)
	}
	return table, nil
}

func parseRuleRow(row []string) (Rule, error) {
	loiMin, err := parseBound(row[1])
	if err != nil {
		return Rule{}, err
	}
	loiMax, err := parseBound(row[2])
	if err != nil {
		return Rule{}, err
	}
	irMin, err := parseBound(row[3])
	if err != nil {
		return Rule{}, err
	}
	irMax, err := parseBound(row[4])
	if err != nil {
		return Rule{}, err
	}
	price, err := parsePrice(row[5])
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Market: country.Normalize(row[0]),
		LOIMin: loiMin, LOIMax: loiMax,
		IRMin: irMin, IRMax: irMax,
		Price: price,
	}, nil
}

func parseBound(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse bound %q", s)
	}
	return int(math.Ceil(v)), nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "parse price %q", s)
	}
	return d, nil
}

type consumerTableDoc struct {
	IRBuckets  []int `yaml:"ir_buckets"`
	LOIBuckets []int `yaml:"loi_buckets"`
	Prices     []struct {
		Market string `yaml:"market"`
		IR     int    `yaml:"ir"`
		LOI    int    `yaml:"loi"`
		Price  string `yaml:"price"`
	} `yaml:"prices"`
}

// LoadConsumerTable reads the bucketed consumer price table from YAML. Bucket
// boundary lists are sorted ascending on load so lookup can binary-search.
func LoadConsumerTable(path string) (*ConsumerTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "pricing: read consumer table")
	}
	var doc consumerTableDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "pricing: parse consumer table")
	}
	if len(doc.IRBuckets) == 0 || len(doc.LOIBuckets) == 0 {
		return nil, eris.New("pricing: consumer table has empty bucket lists")
	}
	sort.Ints(doc.IRBuckets)
	sort.Ints(doc.LOIBuckets)

	table := &ConsumerTable{
		IRBuckets:  doc.IRBuckets,
		LOIBuckets: doc.LOIBuckets,
		Prices:     make(map[ConsumerKey]decimal.Decimal, len(doc.Prices)),
	}
	for i, cell := range doc.Prices {
		price, err := parsePrice(cell.Price)
		if err != nil {
			return nil, eris.Wrapf(err, "pricing: consumer table cell %d", i)
		}
		key := ConsumerKey{Market: strings.ToUpper(cell.Market), IR: cell.IR, LOI: cell.LOI}
		table.Prices[key] = price
	}
	return table, nil
}

type clientRulesDoc struct {
	Clients []struct {
		ClientName    string `yaml:"client_name"`
		MinCPI        string `yaml:"min_cpi"`
		MaxCPI        string `yaml:"max_cpi"`
		DirPremium    string `yaml:"dir_premium"`
		CLevelPremium string `yaml:"clevel_premium"`
	} `yaml:"clients"`
}

// LoadClientRules reads per-client flat B2B rules from YAML, keyed by
// lowercase client name.
func LoadClientRules(path string) (ClientRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "pricing: read client rules")
	}
	var doc clientRulesDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "pricing: parse client rules")
	}

	rules := ClientRules{}
	for _, c := range doc.Clients {
		name := strings.ToLower(strings.TrimSpace(c.ClientName))
		if name == "" {
			continue
		}
		rule := ClientRule{ClientName: name}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&rule.MinCPI, c.MinCPI},
			{&rule.MaxCPI, c.MaxCPI},
			{&rule.DirectorPremium, c.DirPremium},
			{&rule.CLevelPremium, c.CLevelPremium},
		} {
			if strings.TrimSpace(f.src) == "" {
				continue
			}
			d, err := parsePrice(f.src)
			if err != nil {
				return nil, eris.Wrapf(err, "pricing: client rule %s", name)
			}
			*f.dst = d
		}
		rules[name] = rule
	}
	return rules, nil
}

// LoadModel reads a fitted regression from YAML and compiles its column
// index.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "pricing: read model")
	}
	var m Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, eris.Wrap(err, "pricing: parse model")
	}
	if len(m.Columns) != len(m.Coefficients) {
		return nil, eris.Errorf("pricing: model has %d columns but %d coefficients",
			len(m.Columns), len(m.Coefficients))
	}
	m.compile()
	return &m, nil
}
