package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

func TestMetadataFrom(t *testing.T) {
	md := MetadataFrom(Record{
		alias.FieldFrom:    "priya sharma <priya@acmepanel.com>",
		alias.FieldSent:    "monday, 12 may 2025",
		alias.FieldTo:      "bids@ours.com",
		alias.FieldSubject: "re: usa b2b study\nquoted reply noise",
	})

	assert.Equal(t, "priya sharma <priya@acmepanel.com>", md.From)
	assert.Equal(t, "monday, 12 may 2025", md.Sent)
	assert.Equal(t, "re: usa b2b study", md.Subject, "subject keeps only its first line")
	assert.Equal(t, "acmepanel", md.ClientName, "client name derives from the sender domain")
}

func TestMetadataFromNoSender(t *testing.T) {
	md := MetadataFrom(Record{})
	assert.Empty(t, md.From)
	assert.Empty(t, md.ClientName)
}
