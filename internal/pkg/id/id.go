package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, which keeps
// Message-IDs of outgoing mail ordered in relay logs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// MessageID formats a RFC 5322 Message-ID for the given sender domain.
func MessageID(domain string) string {
	if domain == "" {
		domain = "localhost"
	}
	return "<" + New() + "@" + domain + ">"
}
