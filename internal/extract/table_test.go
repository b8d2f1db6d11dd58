package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

func newTestTables() *TableExtractor {
	return NewTableExtractor(alias.NewRegistry())
}

const horizontalTable = `<html><body><table>
<tr><th>Market</th><th>IR</th><th>LOI</th><th>N</th></tr>
<tr><td>USA</td><td>20%</td><td>15</td><td>500</td></tr>
<tr><td>UK</td><td>30%</td><td>10</td><td>300</td></tr>
</table></body></html>`

func TestExtractHorizontal(t *testing.T) {
	te := newTestTables()

	records := te.ExtractHorizontal(horizontalTable)
	require.Len(t, records, 2)

	assert.Equal(t, "usa", records[0].Get(alias.FieldMarket))
	assert.Equal(t, "20%", records[0].Get(alias.FieldIR))
	assert.Equal(t, "15", records[0].Get(alias.FieldLOI))
	assert.Equal(t, "500", records[0].Get(alias.FieldN))
	assert.Equal(t, "uk", records[1].Get(alias.FieldMarket))
}

func TestExtractHorizontalSkipsUnqualifiedTable(t *testing.T) {
	te := newTestTables()

	// A layout table without IR/LOI headers precedes the bid table; only the
	// bid table may produce records.
	html := `<table><tr><th>Name</th><th>Email</th></tr>
<tr><td>Priya</td><td>p@x.com</td></tr></table>` + horizontalTable

	records := te.ExtractHorizontal(html)
	require.Len(t, records, 2)
	assert.Equal(t, "usa", records[0].Get(alias.FieldMarket))
}

func TestExtractHorizontalDropsRaggedRows(t *testing.T) {
	te := newTestTables()

	html := `<table>
<tr><th>IR</th><th>LOI</th></tr>
<tr><td>20%</td></tr>
<tr><td>30%</td><td>12</td></tr>
</table>`

	records := te.ExtractHorizontal(html)
	require.Len(t, records, 1)
	assert.Equal(t, "30%", records[0].Get(alias.FieldIR))
}

func TestExtractVertical(t *testing.T) {
	te := newTestTables()

	html := `<table>
<tr><td>Market:</td><td>USA</td><td>Germany</td></tr>
<tr><td>IR:</td><td>20%</td><td>35%</td></tr>
<tr><td>LOI:</td><td>15</td><td>10</td></tr>
</table>`

	records := te.ExtractVertical(html)
	require.Len(t, records, 2)

	assert.Equal(t, "usa", records[0].Get(alias.FieldMarket))
	assert.Equal(t, "20%", records[0].Get(alias.FieldIR))
	assert.Equal(t, "germany", records[1].Get(alias.FieldMarket))
	assert.Equal(t, "10", records[1].Get(alias.FieldLOI))
}

func TestExtractVerticalUnqualified(t *testing.T) {
	te := newTestTables()

	html := `<table>
<tr><td>Name</td><td>Priya</td></tr>
<tr><td>Email</td><td>p@x.com</td></tr>
</table>`

	assert.Nil(t, te.ExtractVertical(html))
}

func TestTableNAtPrice(t *testing.T) {
	te := newTestTables()

	html := `<table>
<tr><th>IR</th><th>N</th></tr>
<tr><td>20%</td><td>300 @ $4.00</td></tr>
</table>`

	records := te.ExtractHorizontal(html)
	require.Len(t, records, 1)
	assert.Equal(t, "300", records[0].Get(alias.FieldN))
	assert.Equal(t, "$4.00", records[0].Get(alias.FieldRequestedCPI))
}

func TestParseTablesIgnoresNested(t *testing.T) {
	html := `<table><tr><td><table><tr><td>inner</td></tr></table></td></tr></table>`

	tables := parseTables(html)
	require.Len(t, tables, 1)
}
