package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Digest returns the hex sha256 of a statement file's bytes. Identical file
// content always produces the same digest regardless of filename.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Registry remembers the digests of files already imported so a re-upload of
// the same statement can be flagged. In-memory only; a process restart
// forgets past imports.
type Registry struct {
	mu   sync.Mutex
	seen map[string]string // digest -> first filename
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]string)}
}

// Check records the digest and reports whether it was already present, along
// with the filename it was first imported under.
func (r *Registry) Check(digest, filename string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if first, ok := r.seen[digest]; ok {
		return first, true
	}
	r.seen[digest] = filename
	return "", false
}
