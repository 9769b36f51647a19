// Package id provides sortable ID generation for request tracing and outgoing message headers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ulidLen is the encoded length: 48-bit timestamp (10 chars) + 80-bit entropy (16 chars).
const ulidLen = 26

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// IDs generated in later milliseconds always sort after earlier ones.
func NewULID() string {
	return newULIDAt(time.Now())
}

func newULIDAt(t time.Time) string {
	var raw [16]byte

	ms := uint64(t.UnixMilli())
	binary.BigEndian.PutUint16(raw[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(raw[2:6], uint32(ms))

	if _, err := rand.Read(raw[6:]); err != nil {
		// Degraded but functional: time-based entropy.
		binary.BigEndian.PutUint64(raw[6:14], uint64(t.UnixNano()))
	}

	return encodeBase32(raw)
}

// encodeBase32 encodes 128 bits into 26 Crockford characters.
// The 130-bit output window is left-padded with two zero bits.
func encodeBase32(raw [16]byte) string {
	var out [ulidLen]byte

	hi := binary.BigEndian.Uint64(raw[0:8])
	lo := binary.BigEndian.Uint64(raw[8:16])

	for i := ulidLen - 1; i >= 0; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = (lo >> 5) | (hi << 59)
		hi >>= 5
	}

	return string(out[:])
}

// NewMessageID returns an RFC 5322 Message-ID ("<ULID@domain>").
// The domain is taken from the part after "@" when an email address is passed.
// Falls back to "localhost" when no domain can be derived.
func NewMessageID(domain string) string {
	if at := strings.LastIndex(domain, "@"); at >= 0 {
		domain = domain[at+1:]
	}
	domain = strings.Trim(strings.TrimSpace(domain), "<>")
	if domain == "" {
		domain = "localhost"
	}
	return "<" + NewULID() + "@" + domain + ">"
}
