// Package extract turns normalized bid text and HTML tables into canonical
// field records.
package extract

import (
	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
	"github.com/pankajverma010101-svg/predict-cpi/internal/textnorm"
)

// Extractor bundles the normalizer, cascade, and table parsers behind one
// entry point. Construct once at startup; all methods are safe for
// concurrent use.
type Extractor struct {
	registry   *alias.Registry
	normalizer *textnorm.Normalizer
	cascade    *Cascade
	tables     *TableExtractor
}

// Result is the full outcome of extracting one email body.
type Result struct {
	// Records holds one record per bid: a single merged record for scalar
	// text (optionally merged with a lone table record), or one record per
	// table row when a bid table carries several.
	Records []Record `json:"records"`
	// Metadata is the transport envelope pulled from forwarded headers.
	Metadata Metadata `json:"metadata"`
	// FinalCPI is the separately-computed agreed price, "" when absent.
	FinalCPI string `json:"final_cpi,omitempty"`
	// Text is the normalized plain text the cascade ran against.
	Text string `json:"-"`
}

// New builds an Extractor over a fresh default registry.
func New() *Extractor {
	reg := alias.NewRegistry()
	return &Extractor{
		registry:   reg,
		normalizer: textnorm.New(reg),
		cascade:    NewCascade(reg),
		tables:     NewTableExtractor(reg),
	}
}

// Registry exposes the extractor's alias registry.
func (e *Extractor) Registry() *alias.Registry { return e.registry }

// Extract runs the whole pipeline over a raw HTML or plain-text body.
// It never fails: malformed input yields fewer fields, not an error.
func (e *Extractor) Extract(raw string) Result {
	text := e.normalizer.Normalize(raw)

	extracted := e.cascade.PostProcess(e.cascade.Run(text), text)
	metadata := MetadataFrom(extracted)
	stripTransport(extracted)

	// Sender-derived client name unless the partner override already fired.
	if !extracted.Has(alias.FieldClientName) && metadata.ClientName != "" {
		extracted[alias.FieldClientName] = metadata.ClientName
	}

	tableRecords := e.selectTableRecords(raw)

	return Result{
		Records:  mergeRecords(extracted, tableRecords),
		Metadata: metadata,
		FinalCPI: ExtractFinalCPI(text),
		Text:     text,
	}
}

// selectTableRecords applies the orientation precedence rule: horizontal
// wins when both parsers produce records; the non-empty one wins otherwise.
func (e *Extractor) selectTableRecords(raw string) []Record {
	horizontal := e.tables.ExtractHorizontal(raw)
	vertical := e.tables.ExtractVertical(raw)

	if len(horizontal) > 0 {
		return horizontal
	}
	return vertical
}

// mergeRecords combines the scalar text record with table records:
//   - no table records: the scalar record stands alone;
//   - exactly one: its fields are merged into the scalar record, table
//     fields winning on conflict;
//   - several: each table record becomes an independent output record with
//     gaps backfilled from the scalar record.
func mergeRecords(scalar Record, tables []Record) []Record {
	switch len(tables) {
	case 0:
		if len(scalar) == 0 {
			return nil
		}
		return []Record{scalar}
	case 1:
		merged := scalar.Clone()
		for k, v := range tables[0] {
			merged[k] = v
		}
		return []Record{merged}
	default:
		out := make([]Record, 0, len(tables))
		for _, t := range tables {
			rec := t.Clone()
			fillGaps(rec, scalar)
			out = append(out, rec)
		}
		return out
	}
}

// fillGaps copies every field from src that dst does not already carry: a
// single first-non-empty-wins reducer instead of per-field conditionals.
func fillGaps(dst Record, src Record) {
	for k, v := range src {
		if !dst.Has(k) && v != "" {
			dst[k] = v
		}
	}
}
