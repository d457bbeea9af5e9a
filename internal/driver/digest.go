package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ilnorm/internal/transform"
	"ilnorm/internal/unit"
)

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// DigestBytes hashes raw unit file content.
func DigestBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// combineDigest: H(content || dep1 || dep2 ...). parts уже в детерминированном порядке.
func combineDigest(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// ConfigDigest hashes every pipeline setting that changes the normalized
// output, plus the schemas of the unit file and of the cache payload.
func ConfigDigest(cfg transform.Config) Digest {
	desc := fmt.Sprintf("unit=%d cache=%d passes=%s",
		unit.SchemaVersion, diskCacheSchemaVersion,
		strings.Join(transform.New(cfg).Passes(), ","))
	return sha256.Sum256([]byte(desc))
}
