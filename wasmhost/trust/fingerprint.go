package trust

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"

	"github.com/airsstack/airssys/wasmhost"
)

// Fingerprint computes the stable installation key spec.md §4.7 requires:
// blake2b-256(component_id || normalized(source) || sorted(capabilities)),
// hex-encoded for use as a buntdb key. golang.org/x/crypto/blake2b is the
// teacher's own direct dependency; its 256-bit output is the persisted,
// collision-resistant key.
func Fingerprint(id wasmhost.ComponentId, source ComponentSource, capabilities []string) string {
	sorted := append([]string(nil), capabilities...)
	sort.Strings(sorted)

	var buf strings.Builder
	buf.WriteString(id.String())
	buf.WriteByte('\x00')
	buf.WriteString(source.Normalized())
	buf.WriteByte('\x00')
	buf.WriteString(strings.Join(sorted, ","))

	sum := blake2b.Sum256([]byte(buf.String()))
	return hex.EncodeToString(sum[:])
}

// QuickHash returns a cheap 64-bit digest of fingerprint via
// github.com/OneOfOne/xxhash (the teacher's direct dependency), used as an
// in-memory pre-check before touching the persisted store: a request
// whose xxhash doesn't match any persisted decision skips the buntdb
// lookup entirely.
func QuickHash(fingerprint string) uint64 {
	return xxhash.ChecksumString64S(fingerprint, 0)
}
