package extract

import (
	"regexp"
	"strings"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

// Metadata is the transport envelope of one email, captured before the
// header fields are stripped from the business record.
type Metadata struct {
	From       string `json:"from"`
	Sent       string `json:"sent"`
	To         string `json:"to"`
	CC         string `json:"cc"`
	Subject    string `json:"subject"`
	ClientName string `json:"client_name"`
}

var senderDomainRe = regexp.MustCompile(`@([^.@\s]+)\.com`)

// MetadataFrom reads the transport fields out of an extracted record. The
// client name is derived from the sender address domain; the subject keeps
// only its first line.
func MetadataFrom(rec Record) Metadata {
	md := Metadata{
		From: rec.Get(alias.FieldFrom),
		Sent: rec.Get(alias.FieldSent),
		To:   rec.Get(alias.FieldTo),
		CC:   rec.Get(alias.FieldCC),
	}

	subject := rec.Get(alias.FieldSubject)
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}
	md.Subject = strings.TrimSpace(subject)

	md.ClientName = ClientNameFromAddress(md.From)
	return md
}

// ClientNameFromAddress derives a client name from the domain of a sender
// address, "" when none is recognizable.
func ClientNameFromAddress(addr string) string {
	if m := senderDomainRe.FindStringSubmatch(addr); m != nil {
		return m[1]
	}
	return ""
}
