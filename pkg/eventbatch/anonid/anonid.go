// Package anonid extracts the anonymousId field from an opaque batch
// payload: the core never fully parses the host's
// event JSON, it only peeks for this one field to keep the outgoing
// AnonymousId header current, falling back to a freshly generated UUID
// when the field is absent or the peek fails.
package anonid

import (
	"regexp"

	"github.com/google/uuid"
)

// pattern matches the first `"anonymousId":"<value>"` occurrence in a
// batch blob without parsing the surrounding JSON structure. The
// alternations tolerate either quoting style a host's JSON encoder
// might produce, for the key and for the value; the value itself is
// captured (group 1 if double-quoted, group 2 if single-quoted).
var pattern = regexp.MustCompile(`(?:"anonymousId"|'anonymousId')\s*:\s*(?:"([^"]*)"|'([^']*)')`)

// Extract returns the anonymousId found in batch, or a freshly
// generated UUID if none is found or the value is empty.
func Extract(batch string) string {
	m := pattern.FindStringSubmatch(batch)
	if m == nil {
		return uuid.NewString()
	}

	id := m[1]
	if id == "" {
		id = m[2]
	}

	if id == "" {
		return uuid.NewString()
	}

	return id
}
