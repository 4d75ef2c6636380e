package order

import (
	"crypto/rand"
	"time"
)

// Alphabet for the order number suffix. Crockford base32: unambiguous in
// customer support conversations (no I, L, O, U).
const numberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const numberSuffixLen = 5

// NewNumber generates a human-facing order number from a date component and
// a short random suffix, e.g. MN-20260315-7K2QF. Collision probability is
// negligible at session volume; retry-on-duplicate is the persistence
// caller's responsibility.
func NewNumber(now time.Time) string {
	buf := make([]byte, numberSuffixLen)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = numberAlphabet[int(buf[i])%len(numberAlphabet)]
	}
	return "MN-" + now.Format("20060102") + "-" + string(buf)
}
