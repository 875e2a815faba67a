package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds "prefix:<sha256>" over the JSON encoding of parts. Option
// structs hash by field value, so equal options give equal keys.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	// Option structs carry only plain fields; encoding cannot fail.
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Pipelines key caches by the hash of
// a map's canonical node_tree encoding.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
