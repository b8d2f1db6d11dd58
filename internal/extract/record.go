package extract

import (
	"strings"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

// Record is one extracted bid: canonical field -> cleaned string value.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the trimmed value for field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether field carries a non-empty value.
func (r Record) Has(field string) bool {
	return r.Get(field) != ""
}

// filterCanonical keeps only canonical fields with real values. Values are
// lowercased and trimmed; empty and literal "null" values are dropped. This
// is the single record-shape gate every extraction source passes through.
func filterCanonical(reg *alias.Registry, in Record) Record {
	out := make(Record, len(in))
	for key, value := range in {
		field := strings.ToLower(strings.TrimSpace(key))
		v := strings.ToLower(strings.TrimSpace(value))
		if v == "" || v == "null" {
			continue
		}
		if reg.IsCanonical(field) {
			out[field] = v
		}
	}
	return out
}

// stripTransport removes mail-header fields from a business record.
func stripTransport(r Record) {
	for _, f := range alias.TransportFields() {
		delete(r, f)
	}
}
