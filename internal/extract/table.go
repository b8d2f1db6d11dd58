package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

// tableSeparatorStripper removes the separator characters that decorate
// header/key cells ("IR:", "LOI -") before alias lookup.
var tableSeparatorStripper = strings.NewReplacer(":", "", "-", "", "=", "")

// parsedTable is one <table> element flattened to rows of cell text.
type parsedTable struct {
	rows [][]string
}

// TableExtractor parses bid tables out of raw HTML in both orientations.
type TableExtractor struct {
	registry *alias.Registry
}

// NewTableExtractor builds a TableExtractor for the given registry.
func NewTableExtractor(reg *alias.Registry) *TableExtractor {
	return &TableExtractor{registry: reg}
}

// ExtractHorizontal treats the first row of each table as a header and every
// following row as one bid record. A table qualifies only if at least one
// header cell resolves to an IR or LOI alias; only the first qualifying
// table in document order is used. Ragged rows are silently dropped.
func (t *TableExtractor) ExtractHorizontal(rawHTML string) []Record {
	for _, table := range parseTables(rawHTML) {
		if len(table.rows) == 0 {
			continue
		}
		headers := table.rows[0]
		if !t.anyIRorLOI(headers) {
			continue
		}

		var records []Record
		for _, row := range table.rows[1:] {
			if len(row) != len(headers) {
				continue
			}
			rec := Record{}
			for i, h := range headers {
				rec[h] = row[i]
			}
			records = append(records, rec)
		}
		return t.normalizeAll(records)
	}
	return nil
}

// ExtractVertical treats the first cell of each row as the field name and
// the remaining cells as one value per bid column (transposed layout). The
// IR/LOI qualification test runs against the assembled per-column records;
// the first qualifying table wins.
func (t *TableExtractor) ExtractVertical(rawHTML string) []Record {
	for _, table := range parseTables(rawHTML) {
		var columns []Record
		for _, row := range table.rows {
			if len(row) < 2 {
				continue
			}
			key := row[0]
			for i, val := range row[1:] {
				for len(columns) <= i {
					columns = append(columns, Record{})
				}
				columns[i][key] = val
			}
		}
		if len(columns) == 0 {
			continue
		}

		qualified := false
		for _, col := range columns {
			var keys []string
			for k := range col {
				keys = append(keys, k)
			}
			if t.anyIRorLOI(keys) {
				qualified = true
				break
			}
		}
		if !qualified {
			continue
		}
		return t.normalizeAll(columns)
	}
	return nil
}

// anyIRorLOI reports whether any cell, after separator stripping and alias
// lookup, resolves to the ir or loi field.
func (t *TableExtractor) anyIRorLOI(cells []string) bool {
	for _, c := range cells {
		key := stripCellSeparators(c)
		if field, ok := t.registry.Resolve(key); ok {
			if field == alias.FieldIR || field == alias.FieldLOI {
				return true
			}
		}
	}
	return false
}

// normalizeAll routes raw table records through the same alias
// normalization and canonical filtering the text cascade uses, so every
// record has a uniform shape regardless of source.
func (t *TableExtractor) normalizeAll(raw []Record) []Record {
	var out []Record
	for _, rec := range raw {
		normalized := Record{}
		for key, value := range rec {
			k := stripCellSeparators(key)
			if field, ok := t.registry.Resolve(k); ok {
				k = field
			}
			normalized[k] = strings.TrimSpace(value)
		}

		// Tables carry the same "N @ price" shorthand as body text.
		if v := normalized.Get(alias.FieldN); strings.Contains(v, "@") {
			if m := nAtPriceRe.FindStringSubmatch(v); m != nil {
				normalized[alias.FieldN] = strings.TrimSpace(m[1])
				normalized[alias.FieldRequestedCPI] = m[2]
			}
		}

		filtered := filterCanonical(t.registry, normalized)
		if len(filtered) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}

func stripCellSeparators(cell string) string {
	return strings.TrimSpace(tableSeparatorStripper.Replace(cell))
}

// parseTables returns every <table> in document order, flattened to rows of
// trimmed cell text. Both td and th cells are read.
func parseTables(rawHTML string) []parsedTable {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var tables []parsedTable
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "table" {
			tables = append(tables, flattenTable(node))
			return // nested tables are not bid tables
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

func flattenTable(table *html.Node) parsedTable {
	var pt parsedTable
	var findRows func(*html.Node)
	findRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, strings.TrimSpace(nodeText(c)))
				}
			}
			if len(row) > 0 {
				pt.rows = append(pt.rows, row)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			findRows(c)
		}
	}
	findRows(table)
	return pt
}

func nodeText(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}
