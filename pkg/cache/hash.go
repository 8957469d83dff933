package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds "<prefix>:<sha256 of parts as JSON>". Scan keys hash the
// source kind, location and fingerprint, so touching a scanned directory
// misses the cache. Render keys hash the tree's content hash with the frame
// and style, so equal trees share artifacts whichever session loaded them.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. It names tree snapshots for render
// keys and cache files on disk.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
