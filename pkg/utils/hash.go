package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString digests arbitrary text into a fixed-width hex key. Used to key
// cache entries (directory pages, journal embeddings) where the raw input is
// too long or too irregular to be a key itself. Not for anything
// security-sensitive.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
