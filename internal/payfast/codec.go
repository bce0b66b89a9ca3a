package payfast

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Codec signs and verifies gateway payloads with the shared-passphrase MD5
// scheme the gateway mandates. MD5 is a protocol requirement for this legacy
// interop only; nothing else in the codebase may use it.
//
// One canonicalization routine serves both directions: drop the signature
// field and empty values, sort keys bytewise, percent-encode values with
// url.QueryEscape (space as +, uppercase hex), join as key=value with &,
// append the raw passphrase when configured.
type Codec struct {
	passphrase string
}

// NewCodec builds a codec. An empty passphrase means the merchant account
// has none configured; the hash then covers only the fields.
func NewCodec(passphrase string) *Codec {
	return &Codec{passphrase: passphrase}
}

// Sign computes the signature over the payload, ignoring any signature field
// already present.
func (c *Codec) Sign(payload Payload) string {
	return c.digest(payload)
}

// Verify extracts the signature field and recomputes over the rest. The
// comparison is constant-time.
func (c *Codec) Verify(payload Payload) bool {
	provided, ok := payload[FieldSignature]
	if !ok || provided == "" {
		return false
	}
	want := c.digest(payload)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(provided)), []byte(want)) == 1
}

func (c *Codec) digest(payload Payload) string {
	keys := make([]string, 0, len(payload))
	for key, value := range payload {
		if key == FieldSignature || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, key := range keys {
		if i > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(payload[key]))
	}
	// the gateway hashes the passphrase raw, not percent-encoded
	if c.passphrase != "" {
		builder.WriteString("&passphrase=")
		builder.WriteString(c.passphrase)
	}

	sum := md5.Sum([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}
