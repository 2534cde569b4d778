// Package util provides content hashing helpers.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ETag is a strong entity tag for content.
func ETag(content []byte) string {
	return `"` + ContentHash(content) + `"`
}
