// internal/daily/daily.go
//
// Deterministic movie selection for the daily challenge.
// Everyone playing on the same UTC date gets the same catalog entry; the
// salt keeps the sequence unguessable from the catalog order alone.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MovieIndex returns HMAC(salt, YYYY-MM-DD) % catalogLen.
func MovieIndex(date time.Time, salt string, catalogLen int) int {
	if catalogLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(catalogLen))
}
